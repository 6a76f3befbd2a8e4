package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfigDefaults(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	cfg := GetConfig()
	assert.Equal(t, "quizmetrics", cfg.AppName)
	assert.Equal(t, "3001", cfg.AppPort)
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, SQLiteDatabase, cfg.DatabaseType)
	assert.Equal(t, DefaultAdminAPIKey, cfg.AdminAPIKey)
	assert.Contains(t, cfg.GetDatabasePath(), "quizmetrics-development.db")
}

func TestGetConfigEnvOverrides(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("QUIZMETRICS_APP_PORT", "8080")
	t.Setenv("QUIZMETRICS_ENV", Test)
	t.Setenv("QUIZMETRICS_ADMIN_API_KEY", "override-key")

	cfg := GetConfig()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, Test, cfg.Environment)
	assert.True(t, cfg.IsTest())
	assert.Equal(t, "override-key", cfg.AdminAPIKey)
}

func TestValidateRejectsUnknownEnvironment(t *testing.T) {
	cfg := &Config{Environment: "staging", DatabaseType: SQLiteDatabase}
	assert.Error(t, cfg.validate())
}

func TestValidateRejectsUnknownDatabaseType(t *testing.T) {
	cfg := &Config{Environment: Development, DatabaseType: "mysql"}
	assert.Error(t, cfg.validate())
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	cfg := &Config{Environment: Development, DatabaseType: PostgresDatabase}
	assert.Error(t, cfg.validate())

	cfg.DatabaseDSN = "host=localhost user=quiz dbname=quiz"
	require.NoError(t, cfg.validate())
}

func TestPoolSizingByEnvironment(t *testing.T) {
	testCfg := &Config{Environment: Test}
	assert.Equal(t, 1, testCfg.GetMaxOpenConns())
	assert.Equal(t, 1, testCfg.GetMaxIdleConns())

	prodCfg := &Config{Environment: Production}
	assert.Equal(t, 10, prodCfg.GetMaxOpenConns())
	assert.Equal(t, 5, prodCfg.GetMaxIdleConns())

	explicit := &Config{Environment: Test, DatabaseMaxOpenConns: 4, DatabaseMaxIdleConns: 2}
	assert.Equal(t, 4, explicit.GetMaxOpenConns())
	assert.Equal(t, 2, explicit.GetMaxIdleConns())
}
