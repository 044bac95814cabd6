// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predict_requests_total",
			Help: "Total number of /predict requests by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "llm_request_duration_seconds",
			Help: "Duration of outbound LLM generation calls in seconds",
		},
		[]string{"provider"},
	)

	LLMRequestFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_request_failures_total",
			Help: "Total number of failed outbound LLM calls by category",
		},
		[]string{"provider", "category"},
	)

	EnrichmentFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failures_total",
			Help: "Total number of failed enrichment lookups by source",
		},
		[]string{"source"},
	)
)
