package analytics

import (
	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
	"quizmetrics/internal/tracking"
)

// HourlyStats holds the hour-of-day distribution of views and diagnoses.
type HourlyStats struct {
	HourlyViews     []HourCount `json:"hourlyViews"`
	HourlyDiagnosis []HourCount `json:"hourlyDiagnosis"`
}

// GetHourlyStats buckets views and diagnoses by JST hour of day.
func GetHourlyStats(db *gorm.DB, r *timeframe.Range) (*HourlyStats, error) {
	viewStamps, err := fetchCreatedAt(db, &tracking.PageView{}, r, 0)
	if err != nil {
		return nil, err
	}
	diagStamps, err := fetchCreatedAt(db, &tracking.DiagnosisResult{}, r, 0)
	if err != nil {
		return nil, err
	}
	return &HourlyStats{
		HourlyViews:     countByHour(viewStamps),
		HourlyDiagnosis: countByHour(diagStamps),
	}, nil
}

// WeekdayStats holds the weekday distribution of views and diagnoses.
type WeekdayStats struct {
	WeekdayViews     []WeekdayCount `json:"weekdayViews"`
	WeekdayDiagnosis []WeekdayCount `json:"weekdayDiagnosis"`
}

// GetWeekdayStats buckets views and diagnoses by JST weekday.
func GetWeekdayStats(db *gorm.DB, r *timeframe.Range) (*WeekdayStats, error) {
	viewStamps, err := fetchCreatedAt(db, &tracking.PageView{}, r, 0)
	if err != nil {
		return nil, err
	}
	diagStamps, err := fetchCreatedAt(db, &tracking.DiagnosisResult{}, r, 0)
	if err != nil {
		return nil, err
	}
	return &WeekdayStats{
		WeekdayViews:     countByWeekday(viewStamps),
		WeekdayDiagnosis: countByWeekday(diagStamps),
	}, nil
}

// Heatmap is a weekday-by-hour matrix of page view counts. MaxValue never
// drops below 1 so client color scales avoid dividing by zero.
type Heatmap struct {
	Matrix   [7][24]int `json:"matrix"`
	MaxValue int        `json:"maxValue"`
}

// GetHeatmap builds the JST weekday x hour view count matrix.
func GetHeatmap(db *gorm.DB, r *timeframe.Range) (*Heatmap, error) {
	stamps, err := fetchCreatedAt(db, &tracking.PageView{}, r, 0)
	if err != nil {
		return nil, err
	}

	heatmap := &Heatmap{MaxValue: 1}
	for _, t := range stamps {
		weekday := timeframe.WeekdayKey(t)
		hour := t.In(timeframe.JST).Hour()
		heatmap.Matrix[weekday][hour]++
		if heatmap.Matrix[weekday][hour] > heatmap.MaxValue {
			heatmap.MaxValue = heatmap.Matrix[weekday][hour]
		}
	}
	return heatmap, nil
}
