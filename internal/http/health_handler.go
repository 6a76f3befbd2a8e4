package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthStatus is the health check response.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Database  string    `json:"database"`
}

// Health reports service and database liveness.
func (h *Handler) Health(c *fiber.Ctx) error {
	dbStatus := "ok"

	if h.db == nil {
		dbStatus = "error"
		h.logger.Error("Database connection unavailable")
	} else if sqlDB, err := h.db.DB(); err != nil {
		dbStatus = "error"
		h.logger.Error("Database connection error", slog.Any("error", err))
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error"
		h.logger.Error("Database ping failed", slog.Any("error", err))
	}

	health := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  dbStatus,
	}
	if dbStatus != "ok" {
		health.Status = "degraded"
	}
	return c.JSON(health)
}
