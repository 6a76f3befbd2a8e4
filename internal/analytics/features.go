package analytics

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// FeatureStats counts usage of each secondary feature over three windows:
// lifetime, the requested period, and today in JST.
type FeatureStats struct {
	Period        Period        `json:"period"`
	LoveFortune   FeatureCounts `json:"loveFortune"`
	Compatibility FeatureCounts `json:"compatibility"`
	DiagnosisCode FeatureCounts `json:"diagnosisCode"`
}

// FeatureCounts is the three-window count for one feature.
type FeatureCounts struct {
	Total  int `json:"total"`
	Period int `json:"period"`
	Today  int `json:"today"`
}

// GetFeatureStats reduces feature events into per-type window counts.
func GetFeatureStats(db *gorm.DB, r *timeframe.Range) (*FeatureStats, error) {
	var events []tracking.FeatureEvent
	if err := db.Model(&tracking.FeatureEvent{}).
		Select("id", "event_type", "created_at").
		Order("created_at DESC").
		Limit(FeatureRowCap).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("error fetching feature events: %w", err)
	}

	today := timeframe.TodayRange()
	stats := &FeatureStats{Period: Period{Start: r.StartDate, End: r.EndDate}}
	buckets := map[string]*FeatureCounts{
		tracking.FeatureLoveFortune:   &stats.LoveFortune,
		tracking.FeatureCompatibility: &stats.Compatibility,
		tracking.FeatureDiagnosisCode: &stats.DiagnosisCode,
	}

	for _, e := range events {
		counts := buckets[e.EventType]
		if counts == nil {
			continue
		}
		counts.Total++
		if inRange(e.CreatedAt, r) {
			counts.Period++
		}
		if inRange(e.CreatedAt, today) {
			counts.Today++
		}
	}
	return stats, nil
}

func inRange(t time.Time, r *timeframe.Range) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// DiagnosisSummary is one row of the recent-diagnoses list.
type DiagnosisSummary struct {
	ID        uint      `json:"id"`
	TypeCode  string    `json:"type_code"`
	TypeName  string    `json:"type_name"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentDiagnoses lists the newest diagnosis results, newest first.
func RecentDiagnoses(db *gorm.DB, limit int) ([]DiagnosisSummary, error) {
	var rows []DiagnosisSummary
	if err := db.Model(&tracking.DiagnosisResult{}).
		Select("id", "type_code", "type_name", "created_at").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error fetching recent diagnoses: %w", err)
	}
	if rows == nil {
		rows = []DiagnosisSummary{}
	}
	return rows, nil
}

// DiagnosisCodeList is the flattened listing of issued diagnosis codes.
type DiagnosisCodeList struct {
	List  []DiagnosisCodeEntry `json:"list"`
	Total int                  `json:"total"`
}

// DiagnosisCodeEntry is one issued code with its payload fields lifted out.
type DiagnosisCodeEntry struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// ListDiagnosisCodes lists diagnosis-code events in the range, newest first,
// with the code and type pulled out of the JSON payload.
func ListDiagnosisCodes(db *gorm.DB, r *timeframe.Range, limit int) (*DiagnosisCodeList, error) {
	var events []tracking.FeatureEvent
	if err := db.Model(&tracking.FeatureEvent{}).
		Where("event_type = ? AND created_at BETWEEN ? AND ?", tracking.FeatureDiagnosisCode, r.From, r.To).
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("error fetching diagnosis codes: %w", err)
	}

	list := make([]DiagnosisCodeEntry, len(events))
	for i, e := range events {
		var payload struct {
			Code string `json:"code"`
			Type string `json:"type"`
		}
		// Malformed payloads keep their row with empty fields.
		_ = json.Unmarshal([]byte(e.Payload), &payload)
		list[i] = DiagnosisCodeEntry{
			ID:        e.ID,
			Code:      payload.Code,
			Type:      payload.Type,
			CreatedAt: e.CreatedAt,
		}
	}
	return &DiagnosisCodeList{List: list, Total: len(list)}, nil
}
