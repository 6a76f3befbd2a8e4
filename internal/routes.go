package internal

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"quizmetrics/internal/config"
	"quizmetrics/internal/http"
	"quizmetrics/internal/http/middleware"
)

// publicCORSConfig is the CORS setup shared by the public tracking
// endpoints, permissive so the quiz frontend can post from any origin.
var publicCORSConfig = cors.Config{
	AllowOrigins: "*",
	AllowMethods: "POST,GET,OPTIONS",
	AllowHeaders: "Origin, Content-Type, Accept, Referrer, User-Agent, x-api-key",
}

// MountAppRoutes mounts the tracking, admin, and health routes.
func MountAppRoutes(app *fiber.App, db *gorm.DB, logger *slog.Logger, cfg *config.Config) {
	handler := http.NewHandler(db, logger, cfg)

	app.Get("/api/health", handler.Health)

	track := app.Group("/api/track", cors.New(publicCORSConfig))
	track.Post("/pageview", handler.TrackPageView)
	track.Post("/quiz-progress", handler.TrackQuizProgress)
	track.Post("/diagnosis", handler.TrackDiagnosis)
	track.Post("/love-fortune", handler.TrackLoveFortune)
	track.Post("/compatibility", handler.TrackCompatibility)
	track.Post("/diagnosis-code", handler.TrackDiagnosisCode)

	admin := app.Group("/api/admin", middleware.AdminAPIKeyAuth(cfg))
	admin.Get("/dashboard", handler.Dashboard)
	admin.Get("/analytics", handler.Analytics)
	admin.Get("/analytics/hourly", handler.AnalyticsHourly)
	admin.Get("/analytics/weekday", handler.AnalyticsWeekday)
	admin.Get("/analytics/devices", handler.AnalyticsDevices)
	admin.Get("/analytics/referrers", handler.AnalyticsReferrers)
	admin.Get("/analytics/pages", handler.AnalyticsPages)
	admin.Get("/analytics/conversion", handler.AnalyticsConversion)
	admin.Get("/analytics/heatmap", handler.AnalyticsHeatmap)
	admin.Get("/analytics/dropout", handler.AnalyticsDropout)
	admin.Get("/analytics/traffic-sources", handler.AnalyticsTrafficSources)
	admin.Get("/analytics/utm", handler.AnalyticsUTM)
	admin.Get("/analytics/features", handler.AnalyticsFeatures)
	admin.Get("/analytics/campaign/:campaign", handler.AnalyticsCampaign)
	admin.Get("/diagnosis/recent", handler.RecentDiagnoses)
	admin.Get("/diagnosis-codes", handler.DiagnosisCodes)
	admin.Get("/export/diagnosis", handler.ExportDiagnosis)
	admin.Get("/export/pageviews", handler.ExportPageViews)
}
