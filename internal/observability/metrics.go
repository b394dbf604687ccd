package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	complaintsClassifiedTotal   *prometheus.CounterVec
	classificationConfidence    prometheus.Histogram
	bonusComputedTotal          *prometheus.CounterVec
	notificationsPublishedTotal *prometheus.CounterVec
	streamClientsActive         prometheus.Gauge
	triageRequestsTotal         *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "grievance_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grievance_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		complaintsClassifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "complaints_classified_total",
			Help: "Complaints classified at submission time, by issue type.",
		}, []string{"issue_type"})

		classificationConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "classification_confidence",
			Help:    "Confidence score distribution of complaint classifications.",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95},
		})

		bonusComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bonus_computed_total",
			Help: "Submission bonuses computed, by reward curve.",
		}, []string{"curve"})

		notificationsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Notifications published to users, by type.",
		}, []string{"type"})

		streamClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stream_clients_active",
			Help: "Currently connected realtime notification clients.",
		})

		triageRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "triage_requests_total",
			Help: "Advisory triage provider calls, by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			complaintsClassifiedTotal,
			classificationConfidence,
			bonusComputedTotal,
			notificationsPublishedTotal,
			streamClientsActive,
			triageRequestsTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for served requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ComplaintsClassified exposes the counter for complaint classifications.
func ComplaintsClassified() *prometheus.CounterVec {
	RegisterMetrics()
	return complaintsClassifiedTotal
}

// ClassificationConfidence exposes the confidence score histogram.
func ClassificationConfidence() prometheus.Histogram {
	RegisterMetrics()
	return classificationConfidence
}

// BonusComputed exposes the counter for computed submission bonuses.
func BonusComputed() *prometheus.CounterVec {
	RegisterMetrics()
	return bonusComputedTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublishedTotal
}

// StreamClientsActive exposes the gauge for connected realtime clients.
func StreamClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return streamClientsActive
}

// TriageRequests exposes the counter for advisory triage provider calls.
func TriageRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return triageRequestsTotal
}
