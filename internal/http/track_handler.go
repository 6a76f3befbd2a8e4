package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quizmetrics/internal/tracking"
)

// PageViewParams is the POST /api/track/pageview body.
type PageViewParams struct {
	Page        string `json:"page"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
}

// TrackPageView records one page view. UA, referrer, and IP come from the
// request itself.
func (h *Handler) TrackPageView(c *fiber.Ctx) error {
	var params PageViewParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid pageview body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	input := &tracking.CollectPageViewInput{
		Page:        params.Page,
		UserAgent:   c.Get("User-Agent"),
		Referrer:    c.Get("Referer"),
		IPAddress:   getClientIP(c),
		UTMSource:   params.UTMSource,
		UTMMedium:   params.UTMMedium,
		UTMCampaign: params.UTMCampaign,
	}
	if err := tracking.CollectPageView(h.db, h.logger, input); err != nil {
		return storageError(c, "Failed to track pageview")
	}
	return c.JSON(fiber.Map{"success": true})
}

// QuizProgressParams is the POST /api/track/quiz-progress body.
type QuizProgressParams struct {
	SessionID      string `json:"session_id"`
	QuestionNumber int    `json:"question_number"`
	Action         string `json:"action"`
	UTMSource      string `json:"utm_source"`
	UTMMedium      string `json:"utm_medium"`
	UTMCampaign    string `json:"utm_campaign"`
}

// TrackQuizProgress records one quiz step (start, answer, or complete).
func (h *Handler) TrackQuizProgress(c *fiber.Ctx) error {
	var params QuizProgressParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid quiz progress body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	input := &tracking.CollectQuizProgressInput{
		SessionID:      params.SessionID,
		QuestionNumber: params.QuestionNumber,
		Action:         params.Action,
		UserAgent:      c.Get("User-Agent"),
		UTMSource:      params.UTMSource,
		UTMMedium:      params.UTMMedium,
		UTMCampaign:    params.UTMCampaign,
	}
	if err := tracking.CollectQuizProgress(h.db, h.logger, input); err != nil {
		return storageError(c, "Failed to track quiz progress")
	}
	return c.JSON(fiber.Map{"success": true})
}

// DiagnosisParams is the POST /api/track/diagnosis body.
type DiagnosisParams struct {
	TypeCode string `json:"typeCode"`
	TypeName string `json:"typeName"`
	Scores   any    `json:"scores"`
}

// TrackDiagnosis records a completed diagnosis result.
func (h *Handler) TrackDiagnosis(c *fiber.Ctx) error {
	var params DiagnosisParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid diagnosis body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	input := &tracking.CollectDiagnosisInput{
		TypeCode:  params.TypeCode,
		TypeName:  params.TypeName,
		Scores:    params.Scores,
		UserAgent: c.Get("User-Agent"),
	}
	if err := tracking.CollectDiagnosis(h.db, h.logger, input); err != nil {
		return storageError(c, "Failed to track diagnosis")
	}
	return c.JSON(fiber.Map{"success": true})
}

// LoveFortuneParams is the POST /api/track/love-fortune body.
type LoveFortuneParams struct {
	TypeCode string `json:"typeCode"`
	Gender   string `json:"gender"`
	HasLover any    `json:"hasLover"`
}

// TrackLoveFortune records a love fortune run.
func (h *Handler) TrackLoveFortune(c *fiber.Ctx) error {
	var params LoveFortuneParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid love fortune body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	if err := tracking.CollectLoveFortune(h.db, h.logger, params.TypeCode, params.Gender, params.HasLover); err != nil {
		return storageError(c, "Failed to track love-fortune")
	}
	return c.JSON(fiber.Map{"success": true})
}

// CompatibilityParams is the POST /api/track/compatibility body.
type CompatibilityParams struct {
	MyType      string `json:"myType"`
	PartnerType string `json:"partnerType"`
}

// TrackCompatibility records a compatibility check run.
func (h *Handler) TrackCompatibility(c *fiber.Ctx) error {
	var params CompatibilityParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid compatibility body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	if err := tracking.CollectCompatibility(h.db, h.logger, params.MyType, params.PartnerType); err != nil {
		return storageError(c, "Failed to track compatibility")
	}
	return c.JSON(fiber.Map{"success": true})
}

// DiagnosisCodeParams is the POST /api/track/diagnosis-code body.
type DiagnosisCodeParams struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

// TrackDiagnosisCode records an issued diagnosis code. Both fields are
// required.
func (h *Handler) TrackDiagnosisCode(c *fiber.Ctx) error {
	var params DiagnosisCodeParams
	if err := c.BodyParser(&params); err != nil {
		h.logger.Debug("Invalid diagnosis code body", slog.Any("error", err))
		return badRequest(c, "Invalid request body")
	}

	err := tracking.CollectDiagnosisCode(h.db, h.logger, params.Code, params.Type)
	if err != nil {
		var validationErr *tracking.ValidationError
		if errors.As(err, &validationErr) {
			return badRequest(c, "code and type required")
		}
		return storageError(c, "Failed to track diagnosis-code")
	}
	return c.JSON(fiber.Map{"success": true})
}
