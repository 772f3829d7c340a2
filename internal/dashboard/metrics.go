package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ccw",
		Subsystem: "dashboard",
		Name:      "ws_connections_active",
		Help:      "Number of active dashboard WebSocket connections.",
	})

	hookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ccw",
		Subsystem: "dashboard",
		Name:      "hook_requests_total",
		Help:      "Total /api/hook requests, by status.",
	}, []string{"status"})

	hookDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ccw",
		Subsystem: "dashboard",
		Name:      "hook_duration_seconds",
		Help:      "POST /api/hook handler duration in seconds.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
	})
)
