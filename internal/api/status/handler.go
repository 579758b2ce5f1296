package status

import (
	"context"

	"docgen/config"
	ingestsvc "docgen/internal/services/ingest"
	"docgen/pkg/apperror"
	apistatus "docgen/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type Handler struct {
	ingest *ingestsvc.Service
}

func NewHandler(ingest *ingestsvc.Service) *Handler {
	return &Handler{ingest: ingest}
}

// HandleStatus reports corpus counts: reports, chunks by embedding
// status, and covered years.
func (h *Handler) HandleStatus(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	report, err := h.ingest.Status(context.Background())
	if err != nil {
		return apperror.InternalError(config.ModuleStatus, c, apistatus.ErrorCodeInternal, err)
	}

	return apperror.Success(config.ModuleStatus, c, apperror.FiberSuccessMessage{
		Code:       apistatus.OK,
		Message:    "status ok",
		TrackingID: trackingID,
		Data:       report,
	})
}
