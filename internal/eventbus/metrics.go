package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ccw",
	Subsystem: "eventbus",
	Name:      "dropped_events_total",
	Help:      "Total events dropped for slow subscribers.",
})
