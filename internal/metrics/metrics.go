// Package metrics registers the Prometheus collectors for the HTTP layer and
// the LLM gateway.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	defaultMetrics *Metrics
	metricsOnce    sync.Once
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	LLMFallbacksTotal  *prometheus.CounterVec
}

// Default returns the process-wide collectors, registering them on first use
// so repeated calls (tests, multiple routers) never register twice.
func Default() *Metrics {
	metricsOnce.Do(func() {
		defaultMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studyai_http_requests_total",
					Help: "HTTP requests by method, route and status code.",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "studyai_http_request_duration_seconds",
					Help:    "HTTP request latency by method and route.",
					Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
				[]string{"method", "route"},
			),
			LLMRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studyai_llm_requests_total",
					Help: "LLM completions by model and outcome (ok, error).",
				},
				[]string{"model", "outcome"},
			),
			LLMRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "studyai_llm_request_duration_seconds",
					Help:    "LLM completion latency by model.",
					Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160, 320},
				},
				[]string{"model"},
			),
			LLMFallbacksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "studyai_llm_fallbacks_total",
					Help: "Model outputs that could not be coerced into the expected JSON, by use.",
				},
				[]string{"use"},
			),
		}
	})
	return defaultMetrics
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveLLM(model string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LLMRequestsTotal.WithLabelValues(model, outcome).Inc()
	m.LLMRequestDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

func (m *Metrics) IncFallback(use string) {
	m.LLMFallbacksTotal.WithLabelValues(use).Inc()
}
