package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quizmetrics/internal/analytics"
	"quizmetrics/internal/pkg/async"
	"quizmetrics/internal/timeframe"
)

// DashboardResponse is the admin overview: lifetime and today-JST counters,
// per-type diagnosis counts, and the last week's daily series.
type DashboardResponse struct {
	TotalViews     int                   `json:"totalViews"`
	TotalUU        int                   `json:"totalUU"`
	TodayViews     int                   `json:"todayViews"`
	TodayUU        int                   `json:"todayUU"`
	TotalDiagnosis int                   `json:"totalDiagnosis"`
	TodayDiagnosis int                   `json:"todayDiagnosis"`
	TypeStats      []analytics.TypeStat  `json:"typeStats"`
	DailyViews     []analytics.DateCount `json:"dailyViews"`
	DailyDiagnosis []analytics.DateCount `json:"dailyDiagnosis"`
}

// Dashboard assembles the overview. The four independent query groups run
// through the worker pool.
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	week, err := timeframe.NewRange("", "", 7)
	if err != nil {
		h.logger.Error("Failed to build dashboard range", slog.Any("error", err))
		return storageError(c, "Failed to get dashboard data")
	}

	tasks := []async.Task{
		{
			Name: "lifetime",
			Execute: func() (any, error) {
				return analytics.GetLifetimeTotals(h.db)
			},
		},
		{
			Name: "today",
			Execute: func() (any, error) {
				return analytics.GetTodayTotals(h.db)
			},
		},
		{
			Name: "typeStats",
			Execute: func() (any, error) {
				return analytics.GetLifetimeTypeStats(h.db)
			},
		},
		{
			Name: "series",
			Execute: func() (any, error) {
				return analytics.GetDailySeries(h.db, week)
			},
		},
	}

	pool := async.NewPool(4)
	results := pool.Execute(context.Background(), tasks)

	for name, result := range results {
		if result.Err != nil {
			h.logger.Error("Failed to get dashboard data", slog.String("task", name), slog.Any("error", result.Err))
			return storageError(c, "Failed to get dashboard data")
		}
	}

	lifetime := results["lifetime"].Data.(*analytics.LifetimeTotals)
	today := results["today"].Data.(*analytics.TodayTotals)
	typeStats := results["typeStats"].Data.([]analytics.TypeStat)
	series := results["series"].Data.(*analytics.DailySeries)

	return c.JSON(DashboardResponse{
		TotalViews:     lifetime.Views,
		TotalUU:        lifetime.UniqueIPs,
		TodayViews:     today.Views,
		TodayUU:        today.UniqueIPs,
		TotalDiagnosis: lifetime.Diagnoses,
		TodayDiagnosis: today.Diagnoses,
		TypeStats:      typeStats,
		DailyViews:     series.Views,
		DailyDiagnosis: series.Diagnoses,
	})
}
