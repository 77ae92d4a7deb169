// Package metrics — prometheus-метрики релея. Регистрируются в default registry
// и отдаются на GET /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// исходы обработки апдейта
const (
	OutcomeOK        = "ok"
	OutcomeIgnored   = "ignored"
	OutcomeMalformed = "malformed"
	OutcomeForbidden = "forbidden"
	OutcomeReadError = "read_error"
	OutcomeSendError = "send_error"
	OutcomeDisabled  = "disabled"
	OutcomePanic     = "panic"
)

// результаты completion
const (
	CompletionOK          = "ok"
	CompletionUnavailable = "unavailable"
	CompletionFallback    = "fallback"
)

var (
	// UpdatesTotal counts webhook deliveries by outcome.
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_updates_total",
			Help: "Total webhook updates by processing outcome.",
		},
		[]string{"outcome"},
	)

	// CompletionsTotal counts completion calls by result.
	CompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_completions_total",
			Help: "Total completion requests by result.",
		},
		[]string{"result"},
	)

	CompletionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_completion_duration_seconds",
			Help:    "Duration of upstream completion calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		},
	)
)

func init() {
	prometheus.MustRegister(
		UpdatesTotal,
		CompletionsTotal,
		CompletionDurationSeconds,
	)
}

func RecordUpdate(outcome string) {
	UpdatesTotal.WithLabelValues(outcome).Inc()
}

// RecordCompletion — duration == 0 значит сетевого вызова не было.
func RecordCompletion(result string, duration time.Duration) {
	CompletionsTotal.WithLabelValues(result).Inc()
	if duration > 0 {
		CompletionDurationSeconds.Observe(duration.Seconds())
	}
}
