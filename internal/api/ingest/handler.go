package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"docgen/config"
	"docgen/internal/core/parser"
	embedsvc "docgen/internal/services/embed"
	ingestsvc "docgen/internal/services/ingest"
	"docgen/pkg/apperror"
	"docgen/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	ingest *ingestsvc.Service
	embed  *embedsvc.Service
}

func NewHandler(ingest *ingestsvc.Service, embed *embedsvc.Service) *Handler {
	return &Handler{ingest: ingest, embed: embed}
}

type ingestRequest struct {
	FilePath string `json:"file_path"`
}

type batchRequest struct {
	Directory string `json:"directory"`
}

// HandleIngest ingests a single PDF by path. Duplicates come back as a
// skipped outcome, not an error.
func (h *Handler) HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req ingestRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.InvalidRequestBody, err.Error())
	}
	req.FilePath = strings.TrimSpace(req.FilePath)
	if req.FilePath == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "file_path is required")
	}

	res := h.ingest.IngestPDF(context.Background(), req.FilePath)
	switch {
	case res.Err == nil, errors.Is(res.Err, ingestsvc.ErrDuplicateReport):
		return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
			Code:       status.OK,
			Message:    res.Message,
			TrackingID: trackingID,
			Data:       res,
		})
	case errors.Is(res.Err, parser.ErrNotFound):
		return apperror.NotFound(config.ModuleIngest, c, status.IngestFileNotFound, res.Message)
	default:
		var parseErr *parser.ParseError
		if errors.As(res.Err, &parseErr) {
			return apperror.BadRequest(config.ModuleIngest, c, status.IngestParseFailed, res.Message)
		}
		return apperror.InternalError(config.ModuleIngest, c, status.IngestInternal, res.Err)
	}
}

// HandleIngestBatch ingests every PDF in a directory; per-file failures
// are aggregated, never fatal to the batch.
func (h *Handler) HandleIngestBatch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req batchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.InvalidRequestBody, err.Error())
	}
	req.Directory = strings.TrimSpace(req.Directory)
	if req.Directory == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "directory is required")
	}

	batch, err := h.ingest.IngestBatch(context.Background(), req.Directory)
	if err != nil {
		return apperror.NotFound(config.ModuleIngest, c, status.IngestFileNotFound, err.Error())
	}

	return apperror.Success(config.ModuleIngest, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "batch ingest done",
		TrackingID: trackingID,
		Data:       batch,
	})
}

// HandleEmbedAll computes vectors for all chunks awaiting embedding.
func (h *Handler) HandleEmbedAll(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	summary, err := h.embed.EmbedAll(context.Background())
	if err != nil {
		return apperror.InternalError(config.ModuleEmbedding, c, status.ErrorCodeInternal, err)
	}

	return apperror.Success(config.ModuleEmbedding, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "embedding done",
		TrackingID: trackingID,
		Data:       summary,
	})
}
