package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"docgen/config"
	"docgen/internal/core/generator"
	"docgen/internal/core/retriever"
	"docgen/pkg/apperror"
	"docgen/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	searcher  *retriever.Searcher
	generator *generator.Service
}

func NewHandler(searcher *retriever.Searcher, gen *generator.Service) *Handler {
	return &Handler{searcher: searcher, generator: gen}
}

type generateRequest struct {
	Brief         string `json:"brief"`
	SearchResults int    `json:"search_results"`
	YearFilter    *int   `json:"year_filter"`
}

// HandleGenerate searches for chunks matching the brief, then synthesizes
// a report from them with source citations.
func (h *Handler) HandleGenerate(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req generateRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleGenerate, c, status.InvalidRequestBody, err.Error())
	}
	req.Brief = strings.TrimSpace(req.Brief)
	if req.Brief == "" {
		return apperror.BadRequest(config.ModuleGenerate, c, status.MissingParams, "brief is required")
	}
	if req.SearchResults <= 0 {
		req.SearchResults = 5
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	results, err := h.searcher.Search(ctx, req.Brief, req.SearchResults, req.YearFilter)
	if err != nil {
		if errors.Is(err, retriever.ErrEmbeddingUnavailable) {
			return apperror.WriteError(config.ModuleGenerate, c, fiber.StatusBadGateway,
				fmt.Sprintf("DG-%d", status.SearchEmbeddingUnavailable), "embedding service unavailable")
		}
		return apperror.InternalError(config.ModuleGenerate, c, status.SearchInternal, err)
	}

	report, err := h.generator.Generate(ctx, req.Brief, results, req.SearchResults)
	if err != nil {
		if errors.Is(err, generator.ErrLLMUnavailable) {
			return apperror.WriteError(config.ModuleGenerate, c, fiber.StatusBadGateway,
				fmt.Sprintf("DG-%d", status.GenerateLLMUnavailable), "generation service unavailable")
		}
		return apperror.InternalError(config.ModuleGenerate, c, status.GenerateInternal, err)
	}

	return apperror.Success(config.ModuleGenerate, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "report generated",
		TrackingID: trackingID,
		Data:       report,
	})
}
