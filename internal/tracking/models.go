// Package tracking stores the raw quiz analytics events.
package tracking

import "time"

// Quiz progress actions
const (
	ActionStart    = "start"
	ActionAnswer   = "answer"
	ActionComplete = "complete"
)

// Feature event types
const (
	FeatureLoveFortune   = "love_fortune"
	FeatureCompatibility = "compatibility"
	FeatureDiagnosisCode = "diagnosis_code"
)

// Tracked page labels
const (
	PageHome   = "home"
	PageQuiz   = "quiz"
	PageResult = "result"
)

// PageView is a single page hit. Rows are append-only; duplicates are expected.
type PageView struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Page        string    `gorm:"index" json:"page"`
	UserAgent   string    `json:"user_agent"`
	Referrer    string    `json:"referrer"`
	IP          string    `gorm:"column:ip;index" json:"ip"`
	UTMSource   string    `gorm:"column:utm_source;index" json:"utm_source"`
	UTMMedium   string    `gorm:"column:utm_medium" json:"utm_medium"`
	UTMCampaign string    `gorm:"column:utm_campaign;index" json:"utm_campaign"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// QuizProgress records one step of a quiz session.
type QuizProgress struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      string    `gorm:"index" json:"session_id"`
	QuestionNumber int       `json:"question_number"`
	Action         string    `gorm:"index" json:"action"`
	UserAgent      string    `json:"user_agent"`
	UTMSource      string    `gorm:"column:utm_source" json:"utm_source"`
	UTMMedium      string    `gorm:"column:utm_medium" json:"utm_medium"`
	UTMCampaign    string    `gorm:"column:utm_campaign" json:"utm_campaign"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// DiagnosisResult records a completed diagnosis.
type DiagnosisResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TypeCode  string    `gorm:"column:type_code;index" json:"type_code"`
	TypeName  string    `gorm:"column:type_name" json:"type_name"`
	Scores    string    `json:"scores"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// FeatureEvent records usage of a secondary feature. Payload is a JSON document
// whose shape depends on EventType.
type FeatureEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventType string    `gorm:"column:event_type;index" json:"event_type"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
