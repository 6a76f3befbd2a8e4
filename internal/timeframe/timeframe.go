// Package timeframe buckets instants into site-local JST (UTC+9) dates,
// hours, and weekdays, and builds the query ranges for those buckets.
package timeframe

import (
	"fmt"
	"time"
)

// JST is the site-local timezone. All buckets and range bounds live in this
// frame; stored timestamps stay UTC.
var JST = time.FixedZone("JST", 9*60*60)

const dateLayout = "2006-01-02"

// DateKey returns the JST calendar date of t as "2006-01-02".
func DateKey(t time.Time) string {
	return t.In(JST).Format(dateLayout)
}

// HourKey returns the JST hour of t as a zero-padded "00".."23" label.
func HourKey(t time.Time) string {
	return t.In(JST).Format("15")
}

// WeekdayKey returns the JST weekday of t, 0 = Sunday .. 6 = Saturday.
func WeekdayKey(t time.Time) int {
	return int(t.In(JST).Weekday())
}

// Today returns the current JST calendar date as "2006-01-02".
func Today() string {
	return DateKey(time.Now())
}

// Range is a half-open-in-spirit query window. From and To are UTC instants
// corresponding to JST day bounds; StartDate and EndDate keep the requested
// JST dates for labels and filenames.
type Range struct {
	From      time.Time
	To        time.Time
	StartDate string
	EndDate   string
}

// NewRange builds a query range from optional "2006-01-02" date strings.
// Missing endDate defaults to today in JST; missing startDate defaults to
// endDate minus defaultDays. Bounds cover the JST days inclusively:
// startDate 00:00:00 JST through endDate 23:59:59.999999999 JST, converted
// to UTC for comparison against stored timestamps.
func NewRange(startDate, endDate string, defaultDays int) (*Range, error) {
	end := time.Now().In(JST)
	if endDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, endDate, JST)
		if err != nil {
			return nil, fmt.Errorf("invalid end date %q: %w", endDate, err)
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -defaultDays)
	if startDate != "" {
		parsed, err := time.ParseInLocation(dateLayout, startDate, JST)
		if err != nil {
			return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
		}
		start = parsed
	}

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, JST)
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, JST)
	if from.After(to) {
		return nil, fmt.Errorf("start date %s is after end date %s", from.Format(dateLayout), to.Format(dateLayout))
	}

	return &Range{
		From:      from.UTC(),
		To:        to.UTC(),
		StartDate: from.Format(dateLayout),
		EndDate:   to.Format(dateLayout),
	}, nil
}

// TodayRange returns the range covering the current JST day.
func TodayRange() *Range {
	r, _ := NewRange("", "", 0)
	return r
}
