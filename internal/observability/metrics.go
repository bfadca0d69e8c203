package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-request counters used to monitor fallback rate and
// routing distribution in production.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	SQLFallbacks    prometheus.Counter
	ClassifierVotes *prometheus.CounterVec
}

// NewMetrics registers the orchestrator's counters against reg. Pass
// prometheus.NewRegistry() for tests, or prometheus.DefaultRegisterer in
// cmd/server.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hro_requests_total",
			Help: "Total chat requests handled, labeled by routing outcome.",
		}, []string{"routing"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hro_request_duration_seconds",
			Help:    "Chat request end-to-end latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"routing"}),
		SQLFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "hro_sql_fallbacks_total",
			Help: "Count of SQL_ATTEMPT failures that fell back to vector retrieval.",
		}),
		ClassifierVotes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hro_classifier_kind_total",
			Help: "Classifier decisions, labeled by resulting kind.",
		}, []string{"kind"}),
	}
}

// ObserveRequest records one completed chat request.
func (m *Metrics) ObserveRequest(routing string, seconds float64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(routing).Inc()
	m.RequestDuration.WithLabelValues(routing).Observe(seconds)
}

// ObserveFallback records one SQL_FAILED -> VECTOR transition.
func (m *Metrics) ObserveFallback() {
	if m == nil {
		return
	}
	m.SQLFallbacks.Inc()
}

// ObserveClassification records one classifier decision.
func (m *Metrics) ObserveClassification(kind string) {
	if m == nil {
		return
	}
	m.ClassifierVotes.WithLabelValues(kind).Inc()
}
