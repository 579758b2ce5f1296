package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docgen/config"
	"docgen/internal/core/parser"
	"docgen/internal/database"
	"docgen/internal/database/model"
	"docgen/pkg/logger"
)

// ErrDuplicateReport marks an identifier collision; the file is skipped,
// not re-ingested or merged.
var ErrDuplicateReport = errors.New("report already exists")

// Result is the outcome of ingesting one file.
type Result struct {
	Status      string `json:"status"` // success | skipped | error
	ReportID    string `json:"report_id,omitempty"`
	ChunksCount int    `json:"chunks_count,omitempty"`
	Year        int    `json:"year,omitempty"`
	Message     string `json:"message"`
	Err         error  `json:"-"`
}

// BatchResult aggregates per-file outcomes of a directory ingestion.
type BatchResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Skipped int      `json:"skipped"`
	Errors  int      `json:"errors"`
	Results []Result `json:"results"`
}

// StatusReport summarizes the corpus by embedding status.
type StatusReport struct {
	TotalReports      int64 `json:"total_reports"`
	TotalChunks       int64 `json:"total_chunks"`
	AwaitingEmbedding int64 `json:"awaiting_embedding"`
	ReadyChunks       int64 `json:"ready_chunks"`
	YearsCovered      int64 `json:"years_covered"`
}

// Service runs the ingestion pipeline: fetch, extract, structure, chunk,
// persist. One call processes one PDF to completion.
type Service struct {
	store   *database.Store
	fetcher *Fetcher
	extract func(path string) ([]parser.Page, parser.DocInfo, error)
}

func NewService(store *database.Store, fetcher *Fetcher) *Service {
	return &Service{store: store, fetcher: fetcher, extract: parser.ExtractPages}
}

// IngestPDF parses one PDF and persists the report row plus all chunk
// rows atomically. A duplicate identifier yields a skipped result; a
// parse failure yields an error result with nothing persisted.
func (s *Service) IngestPDF(ctx context.Context, path string) Result {
	return s.ingest(ctx, path, path)
}

// IngestUploaded ingests a stored upload. The stored name carries a
// content-hash prefix, so identifier and year come from the client's
// original filename instead.
func (s *Service) IngestUploaded(ctx context.Context, path, originalName string) Result {
	return s.ingest(ctx, path, originalName)
}

func (s *Service) ingest(ctx context.Context, path, metaName string) Result {
	localPath, cleanup, err := s.fetcher.FetchToLocalTemp(ctx, path)
	if err != nil {
		return Result{Status: "error", Message: fmt.Sprintf("fetch failed: %v", err), Err: err}
	}
	defer cleanup()

	pages, info, err := s.extract(localPath)
	if err != nil {
		return Result{Status: "error", Message: err.Error(), Err: err}
	}

	meta := parser.ExtractMetadata(metaName, info, len(pages))

	exists, err := s.store.ReportExists(ctx, meta.ReportID)
	if err != nil {
		return Result{Status: "error", Message: err.Error(), Err: err}
	}
	if exists {
		return Result{
			Status:   "skipped",
			ReportID: meta.ReportID,
			Message:  fmt.Sprintf("report %s already exists", meta.ReportID),
			Err:      ErrDuplicateReport,
		}
	}

	toc := parser.ExtractTOC(pages)
	chunks := parser.ChunkByHeading(pages, toc)

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return Result{Status: "error", Message: err.Error(), Err: err}
	}
	report := model.Report{
		ReportID: meta.ReportID,
		Year:     meta.Year,
		Title:    meta.Title,
		FilePath: path,
		NumPages: meta.NumPages,
		Metadata: string(metaJSON),
	}

	rows := make([]model.Chunk, 0, len(chunks))
	for i, ch := range chunks {
		rows = append(rows, model.Chunk{
			ChunkID:     fmt.Sprintf("%s-%d", meta.ReportID, i),
			ReportID:    meta.ReportID,
			MainHeading: ch.Heading,
			PageRange:   ch.PageRange,
			TextContent: ch.Text,
			Status:      model.ChunkStatusAwaitingEmbedding,
		})
	}

	if err := s.store.CreateReportWithChunks(ctx, &report, rows); err != nil {
		return Result{Status: "error", Message: fmt.Sprintf("persist failed: %v", err), Err: err}
	}

	logger.WithFields(map[string]interface{}{
		"report_id": meta.ReportID,
		"year":      meta.Year,
		"pages":     len(pages),
		"chunks":    len(rows),
		"toc":       len(toc) > 0,
	}).Infof("%v: ingested", config.ModuleIngest)

	return Result{
		Status:      "success",
		ReportID:    meta.ReportID,
		ChunksCount: len(rows),
		Year:        meta.Year,
		Message:     fmt.Sprintf("ingested %s with %d chunks", meta.ReportID, len(rows)),
	}
}

// IngestBatch ingests every *.pdf in a directory, sequentially. Per-file
// failures are counted and never abort the batch.
func (s *Service) IngestBatch(ctx context.Context, dir string) (BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return BatchResult{}, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	batch := BatchResult{Total: len(paths), Results: make([]Result, 0, len(paths))}
	for i, path := range paths {
		logger.Info("%v: [%d/%d] ingesting %s", config.ModuleIngest, i+1, len(paths), filepath.Base(path))
		res := s.IngestPDF(ctx, path)
		batch.Results = append(batch.Results, res)
		switch res.Status {
		case "success":
			batch.Success++
		case "skipped":
			batch.Skipped++
		default:
			batch.Errors++
		}
	}
	return batch, nil
}

// Status reports corpus counts by embedding status.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	reports, err := s.store.CountReports(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	awaiting, err := s.store.CountChunksByStatus(ctx, model.ChunkStatusAwaitingEmbedding)
	if err != nil {
		return StatusReport{}, err
	}
	ready, err := s.store.CountChunksByStatus(ctx, model.ChunkStatusReady)
	if err != nil {
		return StatusReport{}, err
	}
	years, err := s.store.CountDistinctYears(ctx)
	if err != nil {
		return StatusReport{}, err
	}
	return StatusReport{
		TotalReports:      reports,
		TotalChunks:       awaiting + ready,
		AwaitingEmbedding: awaiting,
		ReadyChunks:       ready,
		YearsCovered:      years,
	}, nil
}
