// Package metrics provides Prometheus metrics for tool runs and registry
// operations.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/winevat/winevat/internal/events"
)

var (
	runsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "winevat",
		Subsystem: "runs",
		Name:      "started_total",
		Help:      "Total tool processes launched",
	}, []string{"name"})

	runsTerminated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "winevat",
		Subsystem: "runs",
		Name:      "terminated_total",
		Help:      "Total tool processes exited, by exit class",
	}, []string{"name", "exit_class"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "winevat",
		Subsystem: "runs",
		Name:      "duration_seconds",
		Help:      "Wall time from launch to output drain",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 1800},
	}, []string{"name"})

	registryOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "winevat",
		Subsystem: "registry",
		Name:      "operations_total",
		Help:      "Total registry operations, by outcome",
	}, []string{"op", "ok"})

	configReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "winevat",
		Subsystem: "config",
		Name:      "reloads_total",
		Help:      "Total configuration reloads from disk",
	})
)

// Wire subscribes the metric recorders to the event bus. The returned
// function unsubscribes all of them.
func Wire(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.RunStartedEvent) {
			runsStarted.WithLabelValues(e.Name).Inc()
		}),
		bus.Subscribe(func(e events.RunTerminatedEvent) {
			runsTerminated.WithLabelValues(e.Name, exitClass(e.ExitCode)).Inc()
			runDuration.WithLabelValues(e.Name).Observe(e.Duration)
		}),
		bus.Subscribe(func(e events.RegistryOpEvent) {
			registryOps.WithLabelValues(e.Op, strconv.FormatBool(e.OK)).Inc()
		}),
		bus.Subscribe(func(e events.ConfigReloadedEvent) {
			configReloads.Inc()
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func exitClass(code int) string {
	if code == 0 {
		return "success"
	}
	return "error"
}
