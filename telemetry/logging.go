// Package telemetry sets up structured logging and the prometheus metrics of a solver run
package telemetry

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel reads LOG_LEVEL (DEBUG, INFO, WARN, ERROR), defaulting to INFO
func LogLevel() slog.Level {
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

/*
SetupLogger installs the process wide logger writing to w.
LOG_FORMAT selects "json" or "text" (the default, the solver is usually run interactively).
*/
func SetupLogger(w io.Writer) *slog.Logger {
	var (
		handler slog.Handler
		opts    = &slog.HandlerOptions{
			Level:     LogLevel(),
			AddSource: LogLevel() == slog.LevelDebug,
		}
	)
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

func WithRank(logger *slog.Logger, rank int) *slog.Logger {
	return logger.With("rank", rank)
}
