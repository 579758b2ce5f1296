package healthcheck

import (
	"github.com/gofiber/fiber/v3"
)

func RegisterRoutes(r fiber.Router, h *Handler) {
	grp := r.Group("/health")

	grp.Get("/", h.ApiHealthCheck)
	grp.Get("/database", h.DatabaseHealthCheck)
}
