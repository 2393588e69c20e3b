//go:build !linux

package cmd

import "log/slog"

func countInstructions(fn func() error, logger *slog.Logger) error {
	logger.Warn("hardware counters are only available on linux")
	return fn()
}
