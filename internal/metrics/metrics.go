// Package metrics exposes planner counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "household_planner"

// Metrics groups the planner's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RolloverRuns      *prometheus.CounterVec
	TasksRolledOver   prometheus.Counter
	TasksCompleted    *prometheus.CounterVec
	TasksCreated      *prometheus.CounterVec
	MalformedRecords  *prometheus.CounterVec
	StarsAwarded      *prometheus.CounterVec
	LastRolloverEpoch prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RolloverRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollover_runs_total",
			Help:      "Rollover passes by outcome.",
		}, []string{"outcome"}),
		TasksRolledOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_rolled_over_total",
			Help:      "Tasks moved from completed to done_yesterday.",
		}),
		TasksCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Tasks completed per member.",
		}, []string{"member"}),
		TasksCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_created_total",
			Help:      "Tasks created per member.",
		}, []string{"member"}),
		MalformedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_records_total",
			Help:      "Stored tasks skipped because a timestamp did not parse.",
		}, []string{"stage"}),
		StarsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stars_awarded_total",
			Help:      "Stars credited per member.",
		}, []string{"member"}),
		LastRolloverEpoch: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_rollover_timestamp_seconds",
			Help:      "Unix time of the last rollover attempt.",
		}),
	}
	m.registry.MustRegister(
		m.RolloverRuns,
		m.TasksRolledOver,
		m.TasksCompleted,
		m.TasksCreated,
		m.MalformedRecords,
		m.StarsAwarded,
		m.LastRolloverEpoch,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveMalformed counts n bad records found at stage.
func (m *Metrics) ObserveMalformed(stage string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.MalformedRecords.WithLabelValues(stage).Add(float64(n))
}

func (m *Metrics) ObserveRollover(outcome string, transitioned, malformed int, unix float64) {
	if m == nil {
		return
	}
	m.RolloverRuns.WithLabelValues(outcome).Inc()
	m.TasksRolledOver.Add(float64(transitioned))
	m.MalformedRecords.WithLabelValues("rollover").Add(float64(malformed))
	m.LastRolloverEpoch.Set(unix)
}

func (m *Metrics) ObserveCompletion(member string, stars int) {
	if m == nil {
		return
	}
	m.TasksCompleted.WithLabelValues(member).Inc()
	m.StarsAwarded.WithLabelValues(member).Add(float64(stars))
}

func (m *Metrics) ObserveCreated(member string) {
	if m == nil {
		return
	}
	m.TasksCreated.WithLabelValues(member).Inc()
}
