package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"quizmetrics/internal/analytics"
	"quizmetrics/internal/timeframe"
)

// Default query windows in days.
const (
	defaultHourlyWindow    = 7
	defaultAnalyticsWindow = 30
)

// listDefaultStart is the fallback start date for listing and export
// endpoints, effectively "everything".
const listDefaultStart = "2020-01-01"

// Analytics serves the period overview.
func (h *Handler) Analytics(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetPeriodStats(h.db, r)
		})
}

// AnalyticsHourly serves the hour-of-day distribution.
func (h *Handler) AnalyticsHourly(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultHourlyWindow, "Failed to get hourly analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetHourlyStats(h.db, r)
		})
}

// AnalyticsWeekday serves the weekday distribution.
func (h *Handler) AnalyticsWeekday(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get weekday analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetWeekdayStats(h.db, r)
		})
}

// AnalyticsDevices serves the mobile/tablet/desktop breakdown.
func (h *Handler) AnalyticsDevices(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get device analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetDeviceBreakdown(h.db, r)
		})
}

// AnalyticsReferrers serves the top referrer domains.
func (h *Handler) AnalyticsReferrers(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get referrer analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetTopReferrers(h.db, r)
		})
}

// AnalyticsPages serves per-page view counts.
func (h *Handler) AnalyticsPages(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get page analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetPageStats(h.db, r)
		})
}

// AnalyticsConversion serves the page-to-diagnosis funnel.
func (h *Handler) AnalyticsConversion(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get conversion analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetConversionStats(h.db, r)
		})
}

// AnalyticsHeatmap serves the weekday-by-hour view matrix.
func (h *Handler) AnalyticsHeatmap(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get heatmap data",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetHeatmap(h.db, r)
		})
}

// AnalyticsDropout serves the per-session quiz dropout funnel.
func (h *Handler) AnalyticsDropout(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get dropout analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetDropoutStats(h.db, r)
		})
}

// AnalyticsTrafficSources serves the referrer classification cascade.
func (h *Handler) AnalyticsTrafficSources(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get traffic sources",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetTrafficSources(h.db, r)
		})
}

// AnalyticsUTM serves per-dimension UTM counts.
func (h *Handler) AnalyticsUTM(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get UTM analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetUTMStats(h.db, r)
		})
}

// AnalyticsCampaign serves the drill-down for one utm_campaign.
func (h *Handler) AnalyticsCampaign(c *fiber.Ctx) error {
	campaign := c.Params("campaign")
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get campaign analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetCampaignDetail(h.db, r, campaign)
		})
}

// AnalyticsFeatures serves feature usage counts over lifetime, period, and
// today windows.
func (h *Handler) AnalyticsFeatures(c *fiber.Ctx) error {
	return h.respondWithRange(c, defaultAnalyticsWindow, "Failed to get feature analytics",
		func(r *timeframe.Range) (any, error) {
			return analytics.GetFeatureStats(h.db, r)
		})
}

// RecentDiagnoses serves the newest diagnosis results.
func (h *Handler) RecentDiagnoses(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		limit = 50
	}
	rows, err := analytics.RecentDiagnoses(h.db, limit)
	if err != nil {
		h.logger.Error("Failed to get recent diagnoses", slog.Any("error", err))
		return storageError(c, "Failed to get recent diagnosis")
	}
	return c.JSON(rows)
}

// DiagnosisCodes lists issued diagnosis codes in the range.
func (h *Handler) DiagnosisCodes(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	r, err := listRangeFromQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	list, err := analytics.ListDiagnosisCodes(h.db, r, limit)
	if err != nil {
		h.logger.Error("Failed to get diagnosis codes", slog.Any("error", err))
		return storageError(c, "Failed to get diagnosis codes")
	}
	return c.JSON(list)
}

// respondWithRange parses the date window, runs the aggregation, and writes
// the JSON result, mapping failures to the generic storage error.
func (h *Handler) respondWithRange(c *fiber.Ctx, defaultDays int, failureMessage string, fetch func(*timeframe.Range) (any, error)) error {
	r, err := rangeFromQuery(c, defaultDays)
	if err != nil {
		return badRequest(c, err.Error())
	}

	data, err := fetch(r)
	if err != nil {
		h.logger.Error(failureMessage, slog.String("path", c.Path()), slog.Any("error", err))
		return storageError(c, failureMessage)
	}
	return c.JSON(data)
}

// listRangeFromQuery is rangeFromQuery with the everything-by-default start
// used by listings and exports.
func listRangeFromQuery(c *fiber.Ctx) (*timeframe.Range, error) {
	startDate := c.Query("startDate")
	if startDate == "" {
		startDate = listDefaultStart
	}
	return timeframe.NewRange(startDate, c.Query("endDate"), 0)
}
