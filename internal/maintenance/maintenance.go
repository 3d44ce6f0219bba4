// Package maintenance runs the periodic library sweep: a full validate-all
// pass whose findings are logged rather than returned, so drift in a
// long-lived store surfaces without a client asking.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/emergent-company/planmcp/internal/engine"
)

// Sweeper periodically validates every container in the library.
type Sweeper struct {
	engine   *engine.Engine
	logger   *slog.Logger
	interval time.Duration
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(e *engine.Engine, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{engine: e, logger: logger, interval: interval}
}

// Run blocks, sweeping on each tick until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("maintenance sweep scheduled", "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-ctx.Done():
			s.logger.Info("maintenance sweep stopped")
			return
		}
	}
}

func (s *Sweeper) sweep() {
	started := time.Now()
	report := s.engine.ValidateAll()

	if report.InvalidContainers == 0 {
		s.logger.Info("maintenance sweep clean",
			"containers", report.TotalContainers,
			"elapsed", time.Since(started))
		return
	}

	s.logger.Warn("maintenance sweep found invalid containers",
		"containers", report.TotalContainers,
		"invalid", report.InvalidContainers,
		"elapsed", time.Since(started))
	for _, c := range report.Containers {
		if !c.IsValid {
			s.logger.Warn("invalid container", "id", c.ID, "intent", c.Intent, "diagnostics", c.Diagnostics)
		}
	}
}
