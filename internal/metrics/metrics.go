// Package metrics provides Prometheus metrics for scenario application.
package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the scenario engine.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// Scenario application metrics
	ScenariosApplied      *prometheus.CounterVec
	ModificationsApplied  *prometheus.CounterVec
	ScenarioApplyDuration prometheus.Histogram

	// Pattern copy-on-write metrics
	PatternsCloned      prometheus.Counter
	PatternsPassthrough prometheus.Counter

	// logger for error reporting
	logger *slog.Logger
}

// New creates and registers all engine metrics with a new registry.
func New() *Metrics {
	return NewWithLogger(nil)
}

// NewWithLogger creates metrics with a logger for error reporting.
func NewWithLogger(logger *slog.Logger) *Metrics {
	registry := prometheus.NewRegistry()

	scenariosApplied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shunt_scenarios_applied_total",
			Help: "Total number of scenario applications by outcome",
		},
		[]string{"outcome"},
	)

	modificationsApplied := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shunt_modifications_applied_total",
			Help: "Total number of modifications applied by type",
		},
		[]string{"type"},
	)

	scenarioApplyDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shunt_scenario_apply_duration_seconds",
		Help:    "Scenario application latency distribution",
		Buckets: prometheus.DefBuckets,
	})

	patternsCloned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shunt_patterns_cloned_total",
		Help: "Trip patterns cloned on the copy-on-write path",
	})

	patternsPassthrough := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shunt_patterns_passthrough_total",
		Help: "Trip patterns passed through scenario application untouched",
	})

	// Register all metrics with the custom registry
	registry.MustRegister(
		scenariosApplied,
		modificationsApplied,
		scenarioApplyDuration,
		patternsCloned,
		patternsPassthrough,
	)

	return &Metrics{
		Registry:              registry,
		ScenariosApplied:      scenariosApplied,
		ModificationsApplied:  modificationsApplied,
		ScenarioApplyDuration: scenarioApplyDuration,
		PatternsCloned:        patternsCloned,
		PatternsPassthrough:   patternsPassthrough,
		logger:                logger,
	}
}
