package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SamplesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwatch_samples_generated_total",
			Help: "Total simulated samples written to the store",
		},
		[]string{"device"},
	)

	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwatch_analysis_runs_total",
			Help: "Total trend-analysis pipeline runs",
		},
		[]string{"channel", "metric"},
	)

	InflectionsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwatch_inflections_detected_total",
			Help: "Total new inflection alerts recorded",
		},
		[]string{"device", "channel"},
	)

	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdwatch_webhook_deliveries_total",
			Help: "Alert webhook delivery attempts by outcome",
		},
		[]string{"status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdwatch_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)
