package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DistributionCyclesTotal counts automatic distribution cycles by result.
	DistributionCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_distribution_cycles_total",
			Help: "Total number of automatic distribution cycles, by result (success/failed).",
		},
		[]string{"result"},
	)

	// AssignmentsTotal counts applied payout claims by triggering source.
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_assignments_total",
			Help: "Total number of payouts claimed by a trader, by source (auto/manual).",
		},
		[]string{"source"},
	)

	// CallbacksTotal counts merchant callback outcomes.
	CallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payout_callbacks_total",
			Help: "Total number of merchant callback dispatch outcomes (delivered/failed/skipped).",
		},
		[]string{"outcome"},
	)

	// AutoDistributionEnabled reflects the live scheduler configuration.
	AutoDistributionEnabled = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "payout_auto_distribution_enabled",
			Help: "Whether automatic distribution is currently enabled. 1 if enabled, 0 otherwise.",
		},
	)
)
