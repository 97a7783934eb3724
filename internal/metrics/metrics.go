package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total form submissions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_extractions_total",
			Help: "Total PDF extractions by document type and status",
		},
		[]string{"document_type", "status"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intake_extraction_duration_seconds",
			Help:    "Duration of the OCR plus structured extraction pipeline",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"document_type"},
	)

	CRMSyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_crm_sync_total",
			Help: "Lead pushes to the CRM by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "intake_http_request_duration_seconds",
			Help: "HTTP request latency by route and status",
		},
		[]string{"route", "method", "status"},
	)
)
