package tracking

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ValidationError signals a rejected payload; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// CollectPageViewInput defines the input required to collect a page view.
type CollectPageViewInput struct {
	Page        string
	UserAgent   string
	Referrer    string
	IPAddress   string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

// CollectPageView stores a page view row.
func CollectPageView(db *gorm.DB, logger *slog.Logger, input *CollectPageViewInput) error {
	view := &PageView{
		Page:        input.Page,
		UserAgent:   input.UserAgent,
		Referrer:    input.Referrer,
		IP:          input.IPAddress,
		UTMSource:   input.UTMSource,
		UTMMedium:   input.UTMMedium,
		UTMCampaign: input.UTMCampaign,
		CreatedAt:   time.Now().UTC(),
	}

	if err := db.Create(view).Error; err != nil {
		logger.Error("Failed to store page view", slog.Any("error", err), slog.String("page", input.Page))
		return fmt.Errorf("failed to store page view: %w", err)
	}
	return nil
}

// CollectQuizProgressInput defines the input required to collect a quiz step.
type CollectQuizProgressInput struct {
	SessionID      string
	QuestionNumber int
	Action         string
	UserAgent      string
	UTMSource      string
	UTMMedium      string
	UTMCampaign    string
}

// CollectQuizProgress stores one quiz progress row.
func CollectQuizProgress(db *gorm.DB, logger *slog.Logger, input *CollectQuizProgressInput) error {
	progress := &QuizProgress{
		SessionID:      input.SessionID,
		QuestionNumber: input.QuestionNumber,
		Action:         input.Action,
		UserAgent:      input.UserAgent,
		UTMSource:      input.UTMSource,
		UTMMedium:      input.UTMMedium,
		UTMCampaign:    input.UTMCampaign,
		CreatedAt:      time.Now().UTC(),
	}

	if err := db.Create(progress).Error; err != nil {
		logger.Error("Failed to store quiz progress", slog.Any("error", err), slog.String("session_id", input.SessionID))
		return fmt.Errorf("failed to store quiz progress: %w", err)
	}
	return nil
}

// CollectDiagnosisInput defines the input required to collect a diagnosis.
type CollectDiagnosisInput struct {
	TypeCode  string
	TypeName  string
	Scores    any
	UserAgent string
}

// CollectDiagnosis stores a diagnosis result. Scores are serialized as JSON.
func CollectDiagnosis(db *gorm.DB, logger *slog.Logger, input *CollectDiagnosisInput) error {
	scores, err := json.Marshal(input.Scores)
	if err != nil {
		logger.Warn("Failed to serialize diagnosis scores", slog.Any("error", err))
		scores = []byte("null")
	}

	result := &DiagnosisResult{
		TypeCode:  input.TypeCode,
		TypeName:  input.TypeName,
		Scores:    string(scores),
		UserAgent: input.UserAgent,
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(result).Error; err != nil {
		logger.Error("Failed to store diagnosis result", slog.Any("error", err), slog.String("type_code", input.TypeCode))
		return fmt.Errorf("failed to store diagnosis result: %w", err)
	}
	return nil
}

// CollectLoveFortune stores a love fortune feature event. Fields are
// optional; empty values are stored as JSON null.
func CollectLoveFortune(db *gorm.DB, logger *slog.Logger, typeCode, gender, hasLover any) error {
	return collectFeatureEvent(db, logger, FeatureLoveFortune, map[string]any{
		"type_code": nullable(typeCode),
		"gender":    nullable(gender),
		"has_lover": nullable(hasLover),
	})
}

// CollectCompatibility stores a compatibility check feature event.
func CollectCompatibility(db *gorm.DB, logger *slog.Logger, myType, partnerType string) error {
	return collectFeatureEvent(db, logger, FeatureCompatibility, map[string]any{
		"my_type":      nullable(myType),
		"partner_type": nullable(partnerType),
	})
}

// CollectDiagnosisCode stores a diagnosis code lookup. Both fields are
// required and stored upper-cased.
func CollectDiagnosisCode(db *gorm.DB, logger *slog.Logger, code, typ string) error {
	if code == "" || typ == "" {
		return NewValidationError("code and type are required")
	}
	return collectFeatureEvent(db, logger, FeatureDiagnosisCode, map[string]any{
		"code": strings.ToUpper(code),
		"type": strings.ToUpper(typ),
	})
}

func collectFeatureEvent(db *gorm.DB, logger *slog.Logger, eventType string, payload map[string]any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialize %s payload: %w", eventType, err)
	}

	event := &FeatureEvent{
		EventType: eventType,
		Payload:   string(encoded),
		CreatedAt: time.Now().UTC(),
	}

	if err := db.Create(event).Error; err != nil {
		logger.Error("Failed to store feature event", slog.Any("error", err), slog.String("event_type", eventType))
		return fmt.Errorf("failed to store feature event: %w", err)
	}
	return nil
}

// nullable maps absent or empty payload values to JSON null.
func nullable(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
	}
	return v
}
