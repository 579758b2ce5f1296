package status

import "github.com/gofiber/fiber/v3"

func RegisterRoutes(r fiber.Router, h *Handler) {
	grp := r.Group("/api")

	grp.Get("/status", h.HandleStatus)
}
