package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the LLM metrics with reg. A nil reg uses the default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smc_llm_requests_total",
				Help: "Total number of decision requests sent to a model, by task and status",
			},
			[]string{"model", "task", "status", "error_type"},
		),
		tokensTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smc_llm_tokens_total",
				Help: "Approximate tokens used by decision requests",
			},
			[]string{"model", "task", "type"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smc_llm_request_duration_seconds",
				Help:    "Duration of decision requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model", "task"},
		),
	}
}

// ObserveRequest records metrics for a completed LLM request.
func (p *PrometheusRecorder) ObserveRequest(
	model, task string,
	promptTokens, completionTokens int,
	success bool,
	errorType string,
	duration time.Duration,
) {
	status := statusSuccess
	if !success {
		status = statusError
	}

	p.requestsTotal.WithLabelValues(model, task, status, errorType).Inc()

	if success {
		p.tokensTotal.WithLabelValues(model, task, "prompt").Add(float64(promptTokens))
		p.tokensTotal.WithLabelValues(model, task, "completion").Add(float64(completionTokens))
	}

	p.requestDuration.WithLabelValues(model, task).Observe(duration.Seconds())
}
