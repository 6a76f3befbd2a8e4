// Package http holds the Fiber handlers for the tracking and admin APIs.
package http

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"quizmetrics/internal/config"
	"quizmetrics/internal/timeframe"
)

// Handler carries the shared dependencies of every route.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

// NewHandler creates the route handler set.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{db: db, logger: logger, cfg: cfg}
}

// getClientIP resolves the caller's IP, preferring the first entry of
// X-Forwarded-For when a proxy sits in front.
func getClientIP(c *fiber.Ctx) string {
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		if ip := strings.TrimSpace(strings.Split(forwarded, ",")[0]); ip != "" {
			return ip
		}
	}
	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return c.IP()
}

// rangeFromQuery builds the JST query range from startDate/endDate params,
// falling back to the last defaultDays days.
func rangeFromQuery(c *fiber.Ctx, defaultDays int) (*timeframe.Range, error) {
	return timeframe.NewRange(c.Query("startDate"), c.Query("endDate"), defaultDays)
}

// storageError hides storage detail from the caller; the handler has already
// logged the cause.
func storageError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
