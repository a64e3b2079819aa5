package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/metrics"
)

// Scheduler is the long-lived distribution loop. It ticks on the configured
// interval, runs one cycle per tick while enabled, and reconfigures itself
// reactively when the auto-config holder signals a change. Ticks that arrive
// while a cycle is still running are dropped by the ticker, so a slow cycle
// drifts instead of bursting.
type Scheduler struct {
	Service Service
	Logger  *slog.Logger
}

// Run blocks until ctx is cancelled or the config watch channel closes.
// Cycle failures are logged and the loop idles until the next tick; they are
// never fatal.
func (s Scheduler) Run(ctx context.Context) {
	logger := resolveLogger(s.Logger)
	watch := s.Service.AutoConfig.Watch()
	current := s.Service.AutoConfig.Current()

	ticker := time.NewTicker(current.Interval())
	defer ticker.Stop()

	logger.Info("distribution scheduler started",
		"event", "distribution_scheduler_started",
		"module", logModule,
		"layer", "worker",
		"enabled", current.Enabled,
		"interval_seconds", current.IntervalSeconds,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Info("distribution scheduler stopping",
				"event", "distribution_scheduler_stopped",
				"module", logModule,
				"layer", "worker",
			)
			return

		case updated, ok := <-watch:
			if !ok {
				logger.Info("distribution scheduler config stream closed",
					"event", "distribution_scheduler_stopped",
					"module", logModule,
					"layer", "worker",
				)
				return
			}
			current = updated
			ticker.Reset(current.Interval())
			logger.Info("distribution scheduler reconfigured",
				"event", "distribution_scheduler_reconfigured",
				"module", logModule,
				"layer", "worker",
				"enabled", current.Enabled,
				"interval_seconds", current.IntervalSeconds,
			)

		case <-ticker.C:
			if !current.Enabled {
				continue
			}
			applied, err := s.Service.DistributeOnce(ctx)
			if err != nil {
				metrics.DistributionCyclesTotal.WithLabelValues("failed").Inc()
				logger.Error("distribution cycle failed",
					"event", "distribution_cycle_failed",
					"module", logModule,
					"layer", "worker",
					"applied", applied,
					"error", err.Error(),
				)
				continue
			}
			metrics.DistributionCyclesTotal.WithLabelValues("success").Inc()
			if applied > 0 {
				logger.Info("distribution cycle completed",
					"event", "distribution_cycle_completed",
					"module", logModule,
					"layer", "worker",
					"applied", applied,
				)
			}
		}
	}
}
