package analytics

import (
	"fmt"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// ConversionStats is the page-to-diagnosis funnel. Stages are counted
// independently from page view labels, so a stage can exceed its predecessor
// if a user reloads.
type ConversionStats struct {
	Funnel           []FunnelStage `json:"funnel"`
	ConversionRate   float64       `json:"conversionRate"`
	QuizStartRate    float64       `json:"quizStartRate"`
	QuizCompleteRate float64       `json:"quizCompleteRate"`
}

// FunnelStage is one labeled step with its count.
type FunnelStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// GetConversionStats counts home, quiz, and result views plus completed
// diagnoses in the range, with completion rates in percent to one decimal.
func GetConversionStats(db *gorm.DB, r *timeframe.Range) (*ConversionStats, error) {
	homeViews, err := countPageViews(db, r, tracking.PageHome)
	if err != nil {
		return nil, err
	}
	quizViews, err := countPageViews(db, r, tracking.PageQuiz)
	if err != nil {
		return nil, err
	}
	resultViews, err := countPageViews(db, r, tracking.PageResult)
	if err != nil {
		return nil, err
	}
	completed, err := countRows(db, &tracking.DiagnosisResult{}, r)
	if err != nil {
		return nil, err
	}

	return &ConversionStats{
		Funnel: []FunnelStage{
			{Stage: "Home", Count: homeViews},
			{Stage: "Quiz start", Count: quizViews},
			{Stage: "Result", Count: resultViews},
			{Stage: "Completed", Count: completed},
		},
		ConversionRate:   percentRate(completed, homeViews),
		QuizStartRate:    percentRate(quizViews, homeViews),
		QuizCompleteRate: percentRate(completed, quizViews),
	}, nil
}

func countPageViews(db *gorm.DB, r *timeframe.Range, page string) (int, error) {
	var n int64
	if err := db.Model(&tracking.PageView{}).
		Where("page = ? AND created_at BETWEEN ? AND ?", page, r.From, r.To).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("error counting %s views: %w", page, err)
	}
	return int(n), nil
}

// Quiz page milestones: the question numbers opening each 5-question page,
// plus the final question.
var dropoutMilestones = []int{1, 6, 11, 16, 20}

var dropoutLabels = []string{
	"Page 1 (Q1-Q5)",
	"Page 2 (Q6-Q10)",
	"Page 3 (Q11-Q15)",
	"Page 4 (Q16-Q20)",
	"Completed",
}

// DropoutStats is the per-session quiz funnel. Sessions with zero progress
// rows never appear.
type DropoutStats struct {
	TotalSessions  int            `json:"totalSessions"`
	CompletedCount int            `json:"completedCount"`
	CompletionRate float64        `json:"completionRate"`
	Funnel         []DropoutStage `json:"funnel"`
}

// DropoutStage is one milestone with its reach count and the dropout rate
// relative to the previous stage.
type DropoutStage struct {
	Question    int     `json:"question"`
	Label       string  `json:"label"`
	Reached     int     `json:"reached"`
	DropoutRate float64 `json:"dropoutRate"`
}

// GetDropoutStats folds quiz progress rows into per-session maximum reached
// question and completion, then counts sessions reaching each milestone.
func GetDropoutStats(db *gorm.DB, r *timeframe.Range) (*DropoutStats, error) {
	var rows []tracking.QuizProgress
	if err := db.Model(&tracking.QuizProgress{}).
		Select("session_id", "question_number", "action").
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching quiz progress: %w", err)
	}

	type sessionState struct {
		maxQuestion int
		completed   bool
	}
	sessions := make(map[string]*sessionState)
	for _, row := range rows {
		s := sessions[row.SessionID]
		if s == nil {
			s = &sessionState{}
			sessions[row.SessionID] = s
		}
		if row.QuestionNumber > s.maxQuestion {
			s.maxQuestion = row.QuestionNumber
		}
		if row.Action == tracking.ActionComplete {
			s.completed = true
		}
	}

	reached := make(map[int]int)
	completedCount := 0
	for _, s := range sessions {
		for _, milestone := range dropoutMilestones {
			if s.maxQuestion >= milestone {
				reached[milestone]++
			}
		}
		if s.completed {
			completedCount++
		}
	}

	totalSessions := len(sessions)
	funnel := make([]DropoutStage, len(dropoutMilestones))
	for i, milestone := range dropoutMilestones {
		count := reached[milestone]
		prev := totalSessions
		if i > 0 {
			prev = reached[dropoutMilestones[i-1]]
		}
		rate := 0.0
		if prev > 0 {
			rate = round1((1 - float64(count)/float64(prev)) * 100)
		}
		funnel[i] = DropoutStage{
			Question:    milestone,
			Label:       dropoutLabels[i],
			Reached:     count,
			DropoutRate: rate,
		}
	}

	return &DropoutStats{
		TotalSessions:  totalSessions,
		CompletedCount: completedCount,
		CompletionRate: percentRate(completedCount, totalSessions),
		Funnel:         funnel,
	}, nil
}
