// Package metrics defines the Prometheus collectors for the portfolio API.
// Emission is fire-and-forget by construction: collectors are in-process
// counters scraped out of band, so recording can never add latency or
// failure to the response path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// portfolio_requests_total (counter): total API requests received
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_requests_total",
		Help: "Total number of API requests received, by endpoint",
	}, []string{"endpoint"})

	// portfolio_rejections_total{code}
	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_rejections_total",
		Help: "Number of requests rejected by the pipeline, by rejection code",
	}, []string{"code"})

	// portfolio_request_duration_seconds (histogram)
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_request_duration_seconds",
		Help:    "Request processing latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// portfolio_pitches_generated_total{role,focus}
	PitchesGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_pitches_generated_total",
		Help: "Number of pitches generated, by role and focus",
	}, []string{"role", "focus"})

	// portfolio_leads_captured_total (counter)
	LeadsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_leads_captured_total",
		Help: "Number of contact-form leads captured",
	})

	// portfolio_analytics_dropped_total (counter)
	AnalyticsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_analytics_dropped_total",
		Help: "Number of analytics events dropped because the recorder queue was full",
	})
)

// RecordRequest increments the request counter for an endpoint.
func RecordRequest(endpoint string) {
	RequestsTotal.WithLabelValues(endpoint).Inc()
}

// RecordRejection increments the rejection counter for a code.
func RecordRejection(code string) {
	RejectionsTotal.WithLabelValues(code).Inc()
}

// ObserveDuration records request latency for an endpoint.
func ObserveDuration(endpoint string, seconds float64) {
	RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// RecordPitch increments the pitch counter for a (role, focus) pair.
func RecordPitch(role, focus string) {
	PitchesGenerated.WithLabelValues(role, focus).Inc()
}
