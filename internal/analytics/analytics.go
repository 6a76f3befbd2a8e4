// Package analytics reduces raw tracking rows into the admin dashboard
// aggregates. Reads go through narrow filtered selects with row caps and are
// reduced in request-scoped maps, so they behave the same on sqlite and
// postgres.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"quizmetrics/internal/timeframe"
)

// Row caps per read path. Queries are ordered newest-first, so the cap drops
// the oldest rows in oversized windows.
const (
	DashboardSeriesRowCap = 10000
	AnalyticsRowCap       = 50000
	FeatureRowCap         = 100000
)

// DateCount is one point of a per-day series.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourCount is one hour-of-day bucket, Hour zero-padded "00".."23".
type HourCount struct {
	Hour  string `json:"hour"`
	Count int    `json:"count"`
}

// WeekdayCount is one weekday bucket, Weekday "0" (Sunday) .. "6".
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// PageCount is the hit count for one page label.
type PageCount struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// NameCount is a generic categorical bucket.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TypeStat is the diagnosis count for one personality type.
type TypeStat struct {
	TypeCode string `json:"type_code"`
	TypeName string `json:"type_name"`
	Count    int    `json:"count"`
}

// fetchCreatedAt loads the timestamps of rows in the range, newest first.
func fetchCreatedAt(db *gorm.DB, model any, r *timeframe.Range, limit int) ([]time.Time, error) {
	var stamps []time.Time
	q := db.Model(model).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("created_at", &stamps).Error; err != nil {
		return nil, fmt.Errorf("error fetching timestamps: %w", err)
	}
	return stamps, nil
}

// countRows counts rows of the model inside the range.
func countRows(db *gorm.DB, model any, r *timeframe.Range) (int, error) {
	var n int64
	if err := db.Model(model).
		Where("created_at BETWEEN ? AND ?", r.From, r.To).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return int(n), nil
}

// countByDate buckets timestamps by JST date, ascending.
func countByDate(stamps []time.Time) []DateCount {
	counts := make(map[string]int)
	for _, t := range stamps {
		counts[timeframe.DateKey(t)]++
	}
	series := make([]DateCount, 0, len(counts))
	for date, count := range counts {
		series = append(series, DateCount{Date: date, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// countByHour buckets timestamps by JST hour of day, ascending.
func countByHour(stamps []time.Time) []HourCount {
	counts := make(map[string]int)
	for _, t := range stamps {
		counts[timeframe.HourKey(t)]++
	}
	series := make([]HourCount, 0, len(counts))
	for hour, count := range counts {
		series = append(series, HourCount{Hour: hour, Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Hour < series[j].Hour })
	return series
}

// countByWeekday buckets timestamps by JST weekday, ascending from Sunday.
func countByWeekday(stamps []time.Time) []WeekdayCount {
	counts := make(map[int]int)
	for _, t := range stamps {
		counts[timeframe.WeekdayKey(t)]++
	}
	series := make([]WeekdayCount, 0, len(counts))
	for weekday, count := range counts {
		series = append(series, WeekdayCount{Weekday: fmt.Sprintf("%d", weekday), Count: count})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Weekday < series[j].Weekday })
	return series
}

// sortedNameCounts converts a categorical count map into a slice sorted by
// count descending, truncated to topN when topN > 0.
func sortedNameCounts(counts map[string]int, topN int) []NameCount {
	result := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, NameCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	return result
}

// uniqueIPCount returns the number of distinct non-empty IPs.
func uniqueIPCount(ips []string) int {
	seen := make(map[string]struct{})
	for _, ip := range ips {
		if ip == "" {
			continue
		}
		seen[ip] = struct{}{}
	}
	return len(seen)
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// percentRate returns numerator/denominator as a percentage rounded to one
// decimal, or 0 when the denominator is zero.
func percentRate(numerator, denominator int) float64 {
	if denominator <= 0 {
		return 0
	}
	return round1(float64(numerator) / float64(denominator) * 100)
}
