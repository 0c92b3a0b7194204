// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NavigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_navigations_total",
			Help: "Total number of resolved page navigations",
		},
		[]string{"page"},
	)

	LoginGateBlocks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_login_gate_blocks_total",
			Help: "Navigations to the dashboard blocked by the login gate",
		},
	)

	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_actions_total",
			Help: "Simulated action outcomes",
		},
		[]string{"action", "outcome"},
	)

	TimersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "client_timers_active",
			Help: "Number of tracked timers per tag",
		},
		[]string{"tag"},
	)

	SessionLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_session_loads_total",
			Help: "Session load attempts by result",
		},
		[]string{"result"},
	)

	TimerCallbackPanics = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_timer_callback_panics_total",
			Help: "Timer callbacks recovered from a panic",
		},
	)
)
