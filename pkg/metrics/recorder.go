// Package metrics records coordination loop activity: decisions, worker
// dispatches, and run terminations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder defines the interface for recording loop metrics.
type Recorder interface {
	// ObserveDecision records one encode/resolve/decode round trip.
	ObserveDecision(task, outcome string, duration time.Duration)
	// ObserveDispatch records one worker execution.
	ObserveDispatch(agent, outcome string, duration time.Duration)
	// ObserveRun records how a run ended. Reason is empty when the run failed with an error.
	ObserveRun(reason string, iterations int)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

// Nop returns a recorder that discards all metrics.
func Nop() Recorder {
	return NoopRecorder{}
}

func (NoopRecorder) ObserveDecision(string, string, time.Duration) {}
func (NoopRecorder) ObserveDispatch(string, string, time.Duration) {}
func (NoopRecorder) ObserveRun(string, int)                        {}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	decisionsTotal   *prometheus.CounterVec
	decisionDuration *prometheus.HistogramVec
	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	runsTotal        *prometheus.CounterVec
	runIterations    prometheus.Histogram
}

// NewPrometheusRecorder registers loop metrics with reg. A nil reg uses the default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		decisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smc_decisions_total",
				Help: "Decisions requested from the backend, by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		decisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smc_decision_duration_seconds",
				Help:    "Time to resolve and decode one decision",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"task"},
		),
		dispatchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smc_dispatch_total",
				Help: "Worker executions, by worker and outcome",
			},
			[]string{"agent", "outcome"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smc_dispatch_duration_seconds",
				Help:    "Worker execution time",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smc_runs_total",
				Help: "Completed coordination runs, by termination reason",
			},
			[]string{"reason"},
		),
		runIterations: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smc_run_iterations",
				Help:    "Iterations consumed per run",
				Buckets: prometheus.LinearBuckets(1, 1, 10),
			},
		),
	}
}

func (p *PrometheusRecorder) ObserveDecision(task, outcome string, duration time.Duration) {
	p.decisionsTotal.WithLabelValues(task, outcome).Inc()
	p.decisionDuration.WithLabelValues(task).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveDispatch(agent, outcome string, duration time.Duration) {
	p.dispatchTotal.WithLabelValues(agent, outcome).Inc()
	p.dispatchDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveRun(reason string, iterations int) {
	if reason == "" {
		reason = OutcomeError
	}
	p.runsTotal.WithLabelValues(reason).Inc()
	p.runIterations.Observe(float64(iterations))
}
