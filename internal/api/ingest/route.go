package ingest

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router, h *Handler) {
	grp := r.Group("/api")

	grp.Post("/ingest", h.HandleIngest)
	grp.Post("/ingest/batch", h.HandleIngestBatch)
	grp.Post("/embed", h.HandleEmbedAll)
}
