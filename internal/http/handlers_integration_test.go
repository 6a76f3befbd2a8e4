package http_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmetrics/internal/config"
	"quizmetrics/internal/testsupport"
	"quizmetrics/internal/tracking"
)

func doPost(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func doAdminGet(t *testing.T, app *fiber.App, path, apiKey string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestHealthEndpoint(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	req := httptest.NewRequest(fiber.MethodGet, "/api/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, "ok", health["database"])
	assert.NotEmpty(t, health["timestamp"])
}

func TestTrackPageView(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	req := httptest.NewRequest(fiber.MethodPost, "/api/track/pageview",
		strings.NewReader(`{"page":"home","utm_source":"newsletter","utm_campaign":"spring"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone)")
	req.Header.Set("Referer", "https://example.com/article")
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])

	var view tracking.PageView
	require.NoError(t, db.First(&view).Error)
	assert.Equal(t, "home", view.Page)
	assert.Equal(t, "203.0.113.9", view.IP)
	assert.Equal(t, "https://example.com/article", view.Referrer)
	assert.Equal(t, "newsletter", view.UTMSource)
	assert.Equal(t, "spring", view.UTMCampaign)

	// The tracked view shows up in the conversion funnel
	status, raw := doAdminGet(t, app, "/api/admin/analytics/conversion", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)

	var conversion struct {
		Funnel []struct {
			Stage string `json:"stage"`
			Count int    `json:"count"`
		} `json:"funnel"`
	}
	require.NoError(t, json.Unmarshal(raw, &conversion))
	require.NotEmpty(t, conversion.Funnel)
	assert.Equal(t, "Home", conversion.Funnel[0].Stage)
	assert.GreaterOrEqual(t, conversion.Funnel[0].Count, 1)
}

func TestTrackQuizProgress(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, body := doPost(t, app, "/api/track/quiz-progress",
		`{"session_id":"s1","question_number":6,"action":"answer"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	var progress tracking.QuizProgress
	require.NoError(t, db.First(&progress).Error)
	assert.Equal(t, "s1", progress.SessionID)
	assert.Equal(t, 6, progress.QuestionNumber)
}

func TestTrackDiagnosis(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, body := doPost(t, app, "/api/track/diagnosis",
		`{"typeCode":"A1","typeName":"Type A","scores":{"romance":12}}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	var result tracking.DiagnosisResult
	require.NoError(t, db.First(&result).Error)
	assert.Equal(t, "A1", result.TypeCode)
	assert.JSONEq(t, `{"romance":12}`, result.Scores)
}

func TestTrackLoveFortuneAndCompatibility(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, body := doPost(t, app, "/api/track/love-fortune",
		`{"typeCode":"A1","gender":"female","hasLover":true}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, body = doPost(t, app, "/api/track/compatibility",
		`{"myType":"A1","partnerType":"B2"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	var count int64
	db.Model(&tracking.FeatureEvent{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestTrackRejectsMalformedBody(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	paths := []string{
		"/api/track/pageview",
		"/api/track/quiz-progress",
		"/api/track/diagnosis",
		"/api/track/love-fortune",
		"/api/track/compatibility",
		"/api/track/diagnosis-code",
	}
	for _, path := range paths {
		status, body := doPost(t, app, path, `{"page":`)
		assert.Equalf(t, fiber.StatusBadRequest, status, "POST %s", path)
		assert.Equal(t, "Invalid request body", body["error"])
	}

	var count int64
	db.Model(&tracking.PageView{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTrackDiagnosisCodeValidation(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, body := doPost(t, app, "/api/track/diagnosis-code", `{"code":"abc123"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "code and type required", body["error"])

	status, body = doPost(t, app, "/api/track/diagnosis-code", `{"code":"abc123","type":"a1"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])

	var event tracking.FeatureEvent
	require.NoError(t, db.First(&event).Error)
	assert.JSONEq(t, `{"code":"ABC123","type":"A1"}`, event.Payload)
}

func TestAdminRoutesRequireAPIKey(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, raw := doAdminGet(t, app, "/api/admin/dashboard", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, string(raw))

	status, _ = doAdminGet(t, app, "/api/admin/dashboard", "wrong-key")
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doAdminGet(t, app, "/api/admin/dashboard", config.DefaultAdminAPIKey)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestDashboardResponseShape(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	testsupport.CreatePageView(t, db, "home", "ua", "", "1.1.1.1", time.Now().UTC())
	testsupport.CreateDiagnosis(t, db, "A1", "Type A", time.Now().UTC())

	status, raw := doAdminGet(t, app, "/api/admin/dashboard", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, float64(1), body["totalViews"])
	assert.Equal(t, float64(1), body["totalUU"])
	assert.Equal(t, float64(1), body["todayViews"])
	assert.Equal(t, float64(1), body["totalDiagnosis"])
	require.Contains(t, body, "typeStats")
	require.Contains(t, body, "dailyViews")
	require.Contains(t, body, "dailyDiagnosis")
}

func TestAnalyticsEndpointsRespond(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	testsupport.CreatePageView(t, db, "home", "Mozilla/5.0 (iPhone)", "", "1.1.1.1", time.Now().UTC())

	paths := []string{
		"/api/admin/analytics",
		"/api/admin/analytics/hourly",
		"/api/admin/analytics/weekday",
		"/api/admin/analytics/devices",
		"/api/admin/analytics/referrers",
		"/api/admin/analytics/pages",
		"/api/admin/analytics/conversion",
		"/api/admin/analytics/heatmap",
		"/api/admin/analytics/dropout",
		"/api/admin/analytics/traffic-sources",
		"/api/admin/analytics/utm",
		"/api/admin/analytics/features",
		"/api/admin/analytics/campaign/spring",
		"/api/admin/diagnosis-codes",
	}
	for _, path := range paths {
		status, raw := doAdminGet(t, app, path, config.DefaultAdminAPIKey)
		assert.Equalf(t, fiber.StatusOK, status, "GET %s: %s", path, raw)
	}
}

func TestAnalyticsRejectsMalformedDates(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, raw := doAdminGet(t, app, "/api/admin/analytics?startDate=bogus", config.DefaultAdminAPIKey)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(raw), "error")
}

func TestRecentDiagnosesReturnsBareArray(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, raw := doAdminGet(t, app, "/api/admin/diagnosis/recent", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))

	testsupport.CreateDiagnosis(t, db, "A1", "Type A", time.Now().UTC())
	testsupport.CreateDiagnosis(t, db, "B2", "Type B", time.Now().UTC().Add(time.Second))

	status, raw = doAdminGet(t, app, "/api/admin/diagnosis/recent?limit=1", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "B2", list[0]["type_code"])

	// A zero or negative limit falls back to the default instead of
	// returning nothing
	status, raw = doAdminGet(t, app, "/api/admin/diagnosis/recent?limit=0", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list, 2)
}

func TestDiagnosisCodesZeroLimitFallsBackToDefault(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	status, body := doPost(t, app, "/api/track/diagnosis-code", `{"code":"abc123","type":"a1"}`)
	require.Equal(t, fiber.StatusOK, status)
	require.Equal(t, true, body["success"])

	statusCode, raw := doAdminGet(t, app, "/api/admin/diagnosis-codes?limit=0", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, statusCode)

	var codes struct {
		List  []map[string]any `json:"list"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(raw, &codes))
	assert.Equal(t, 1, codes.Total)
	require.Len(t, codes.List, 1)
	assert.Equal(t, "ABC123", codes.List[0]["code"])
}

func TestExportDiagnosisCSV(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	testsupport.CreateDiagnosis(t, db, "A1", "Type A", time.Now().UTC())

	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/export/diagnosis", nil)
	req.Header.Set("x-api-key", config.DefaultAdminAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment; filename=diagnosis_")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.True(t, strings.HasPrefix(body, "﻿"))
	assert.Contains(t, body, "ID,Type code,Type name,Scores,User agent,Timestamp")
	assert.Contains(t, body, "A1")
}

func TestExportPageViewsCSV(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	app := testsupport.CreateTestApp(t, db)

	testsupport.CreatePageView(t, db, "home", "Mozilla/5.0", "https://example.com", "1.1.1.1", time.Now().UTC())

	status, raw := doAdminGet(t, app, "/api/admin/export/pageviews", config.DefaultAdminAPIKey)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "ID,Page,User agent,Referrer,IP,Timestamp")
	assert.Contains(t, string(raw), "home")
}
