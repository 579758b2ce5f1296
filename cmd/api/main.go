package main

import (
	"context"
	"fmt"
	"time"

	"docgen/config"
	apigenerate "docgen/internal/api/generate"
	apihealth "docgen/internal/api/healthcheck"
	apiingest "docgen/internal/api/ingest"
	apisearch "docgen/internal/api/search"
	apistatus "docgen/internal/api/status"
	apiupload "docgen/internal/api/upload"
	"docgen/internal/core/embedding"
	"docgen/internal/core/generator"
	"docgen/internal/core/retriever"
	"docgen/internal/database"
	"docgen/internal/middleware"
	embedsvc "docgen/internal/services/embed"
	ingestsvc "docgen/internal/services/ingest"
	"docgen/pkg/logger"
	s3client "docgen/pkg/s3"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logger.Fatal(err, "load config")
	}
	if err := logger.SetLevel(string(cfg.LogLevel)); err != nil {
		logger.Warn("invalid log level %q, keeping default", cfg.LogLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal(err, "connect database")
	}
	store := database.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		logger.Fatal(err, "migrate schema")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	s3cli, err := s3client.NewClient(ctx, cfg.S3)
	cancel()
	if err != nil {
		logger.Fatal(err, "s3 client")
	}

	embedder := embedding.NewService(cfg.OpenAI)
	fetcher := ingestsvc.NewFetcher(s3cli)
	ingestService := ingestsvc.NewService(store, fetcher)
	embedService := embedsvc.NewService(store, embedder)
	searcher := retriever.NewSearcher(store, embedder, retriever.LinearRanker{})
	renderer := generator.NewMarkdownRenderer(cfg.Ingest.ReportDir)
	generateService := generator.NewService(cfg.OpenAI, store, renderer)

	app := fiber.New(fiber.Config{
		AppName:   cfg.Server.AppName,
		BodyLimit: cfg.Server.BodyLimit,
	})

	middleware.Register(app, cfg.Server.Concurrency)
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Cors.AllowOrigins,
		AllowMethods: cfg.Cors.AllowMethods,
		AllowHeaders: cfg.Cors.AllowHeaders,
	}))

	// routes
	apihealth.RegisterRoutes(app, apihealth.NewHandler(db))
	apiingest.RegisterRoutes(app, apiingest.NewHandler(ingestService, embedService))
	apisearch.RegisterRoutes(app, apisearch.NewHandler(searcher))
	apigenerate.RegisterRoutes(app, apigenerate.NewHandler(searcher, generateService))
	apistatus.RegisterRoutes(app, apistatus.NewHandler(ingestService))
	apiupload.RegisterRoutes(app, apiupload.NewHandler(cfg, s3cli, ingestService))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	if err := app.Listen(addr); err != nil {
		logger.Fatal(err, "server error")
	}
}
