package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SubmissionsReceived prometheus.Counter
	SubmissionsAccepted prometheus.Counter
	SubmissionsRejected *prometheus.CounterVec // reason label

	PipelineStepFailures  *prometheus.CounterVec // step: pdf_generation, email_notification, sheets_append
	PDFGenerationDuration prometheus.Histogram
	PDFFallbacks          prometheus.Counter
	NotificationsSent     *prometheus.CounterVec // transport label

	RateLimitExceeded *prometheus.CounterVec // endpoint class label
	CSRFTokensIssued  prometheus.Counter
	CSRFFailures      prometheus.Counter

	SweepRunsTotal       *prometheus.CounterVec // store, outcome labels
	SweepEntriesRemoved  *prometheus.CounterVec // store label
	SweepDurationSeconds prometheus.Histogram

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SubmissionsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wareworks_submissions_received_total",
			Help: "Total number of application submissions received",
		}),
		SubmissionsAccepted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wareworks_submissions_accepted_total",
			Help: "Total number of application submissions accepted",
		}),
		SubmissionsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_submissions_rejected_total",
			Help: "Total number of rejected submissions, labeled by reason",
		}, []string{"reason"}),
		PipelineStepFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_pipeline_step_failures_total",
			Help: "Total number of non-fatal pipeline step failures, labeled by step",
		}, []string{"step"}),
		PDFGenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wareworks_pdf_generation_duration_seconds",
			Help:    "Duration of PDF generation in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		PDFFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wareworks_pdf_fallbacks_total",
			Help: "Total number of PDFs synthesized because the template could not be filled",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_notifications_sent_total",
			Help: "Total number of notifications sent, labeled by transport",
		}, []string{"transport"}),
		RateLimitExceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_rate_limit_exceeded_total",
			Help: "Total number of rate-limited requests, labeled by endpoint class",
		}, []string{"class"}),
		CSRFTokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wareworks_csrf_tokens_issued_total",
			Help: "Total number of CSRF tokens issued",
		}),
		CSRFFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wareworks_csrf_failures_total",
			Help: "Total number of requests rejected by CSRF validation",
		}),
		SweepRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_sweep_runs_total",
			Help: "Total number of expiry sweep runs, labeled by store and outcome",
		}, []string{"store", "outcome"}),
		SweepEntriesRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wareworks_sweep_entries_removed_total",
			Help: "Total number of expired entries removed by sweeps, labeled by store",
		}, []string{"store"}),
		SweepDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wareworks_sweep_duration_seconds",
			Help:    "Duration of expiry sweep runs in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wareworks_endpoint_latency_seconds",
			Help:    "Latency of endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
