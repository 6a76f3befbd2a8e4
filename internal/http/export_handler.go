package http

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quizmetrics/internal/export"
	"quizmetrics/internal/tracking"
)

// ExportDiagnosis downloads diagnosis results as CSV.
func (h *Handler) ExportDiagnosis(c *fiber.Ctx) error {
	r, err := listRangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var rows []tracking.DiagnosisResult
	if err := h.db.Model(&tracking.DiagnosisResult{}).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		h.logger.Error("Failed to export diagnoses", slog.Any("error", err))
		return storageError(c, "Failed to export diagnosis")
	}

	return sendCSV(c, fmt.Sprintf("diagnosis_%s_%s.csv", r.StartDate, r.EndDate), export.DiagnosisCSV(rows))
}

// ExportPageViews downloads page views as CSV.
func (h *Handler) ExportPageViews(c *fiber.Ctx) error {
	r, err := listRangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	var rows []tracking.PageView
	if err := h.db.Model(&tracking.PageView{}).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		h.logger.Error("Failed to export page views", slog.Any("error", err))
		return storageError(c, "Failed to export pageviews")
	}

	return sendCSV(c, fmt.Sprintf("pageviews_%s_%s.csv", r.StartDate, r.EndDate), export.PageViewsCSV(rows))
}

func sendCSV(c *fiber.Ctx, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Send(body)
}
