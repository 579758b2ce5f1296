package healthcheck

import (
	"context"
	"time"

	"docgen/config"
	"docgen/pkg/apperror"
	"docgen/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) ApiHealthCheck(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *Handler) DatabaseHealthCheck(c fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, status.ErrorCodeInternal, err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperror.InternalError(config.ModuleDatabase, c, status.ErrorCodeInternal, err)
	}
	return c.SendString("ok")
}
