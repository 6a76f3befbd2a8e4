// Package logging builds the application slog.Logger with file rotation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"quizmetrics/internal/config"
)

// NewLogger creates a logger that writes JSON records to a rotated file and,
// outside production, mirrors them to stdout in text form.
func NewLogger(cfg *config.Config) *slog.Logger {
	level := parseLevel(cfg.GetLogLevel())

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.GetLogDirectory(), cfg.AppName+".log"),
		MaxSize:    cfg.LogsMaxSizeInMb,
		MaxBackups: cfg.LogsMaxBackups,
		MaxAge:     cfg.LogsMaxAgeInDays,
		Compress:   true,
	}

	fileHandler := slog.NewJSONHandler(rotated, &slog.HandlerOptions{Level: level})

	if cfg.IsProduction() {
		return slog.New(fileHandler)
	}

	stdout := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(newTeeHandler(fileHandler, stdout))
}

// NewTestLogger returns a logger that discards everything; intended for tests.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(s string) slog.Level {
	switch s {
	case string(config.LogLevelDebug):
		return slog.LevelDebug
	case string(config.LogLevelWarn):
		return slog.LevelWarn
	case string(config.LogLevelError):
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
