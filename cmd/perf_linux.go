//go:build linux

package cmd

import (
	"log/slog"

	perf "github.com/hodgesds/perf-utils"
)

// countInstructions runs fn under a hardware instruction counter, falling back to a plain run when counters are unavailable
func countInstructions(fn func() error, logger *slog.Logger) error {
	var (
		ran    bool
		runErr error
	)
	pv, err := perf.CPUInstructions(func() error {
		ran = true
		runErr = fn()
		return runErr
	})
	switch {
	case runErr != nil:
		return runErr
	case err != nil && !ran:
		logger.Warn("hardware counters unavailable", "err", err)
		return fn()
	case err != nil:
		logger.Warn("reading hardware counters", "err", err)
		return nil
	}
	logger.Info("cpu instructions", "count", pv.Value, "enabled_ns", pv.TimeEnabled, "running_ns", pv.TimeRunning)
	return nil
}
