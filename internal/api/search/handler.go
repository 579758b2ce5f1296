package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"docgen/config"
	"docgen/internal/core/retriever"
	"docgen/pkg/apperror"
	"docgen/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	searcher *retriever.Searcher
}

func NewHandler(searcher *retriever.Searcher) *Handler {
	return &Handler{searcher: searcher}
}

type searchRequest struct {
	Query      string `json:"query"`
	TopN       int    `json:"top_n"`
	YearFilter *int   `json:"year_filter"`
}

type searchResponse struct {
	Results []retriever.Result `json:"results"`
}

// HandleSearch ranks stored chunks against a free-text query. An
// unreachable embedding backend maps to 502, distinct from an empty
// result set.
func (h *Handler) HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req searchRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperror.BadRequest(config.ModuleSearch, c, status.InvalidRequestBody, err.Error())
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return apperror.BadRequest(config.ModuleSearch, c, status.MissingParams, "query is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := h.searcher.Search(ctx, req.Query, req.TopN, req.YearFilter)
	if err != nil {
		if errors.Is(err, retriever.ErrEmbeddingUnavailable) {
			return apperror.WriteError(config.ModuleSearch, c, fiber.StatusBadGateway,
				fmt.Sprintf("DG-%d", status.SearchEmbeddingUnavailable), "embedding service unavailable")
		}
		return apperror.InternalError(config.ModuleSearch, c, status.SearchInternal, err)
	}

	return apperror.Success(config.ModuleSearch, c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search ok",
		TrackingID: trackingID,
		Data:       searchResponse{Results: results},
	})
}
