package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "careerlens"

var (
	// RequestCounter counts HTTP requests by route pattern and status code
	RequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)

	// DatabaseUp is 1 while the last connectivity check succeeded
	DatabaseUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_up",
			Help:      "Whether the database answered the last health ping",
		},
	)

	// CacheRequests counts cache lookups; result is hit or miss
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	// AdvisorCalls counts AI provider calls; outcome is ok, error or fallback
	AdvisorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "calls_total",
			Help:      "AI advisory operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	AdvisorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "advisor",
			Name:      "call_duration_seconds",
			Help:      "AI provider call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"operation"},
	)

	AssessmentsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_submitted_total",
			Help:      "Assessment submissions scored",
		},
	)

	// PracticeSessions tracks live practice sessions by kind (test or interview)
	PracticeSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "practice",
			Name:      "sessions_active",
			Help:      "Practice sessions held in memory",
		},
		[]string{"kind"},
	)
)

// SetDatabaseUp records the current connectivity state
func SetDatabaseUp(up bool) {
	if up {
		DatabaseUp.Set(1)
		return
	}
	DatabaseUp.Set(0)
}
