package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// Methods are nil-safe so services can run without metrics wired.
type Metrics struct {
	RequestLatency    *prometheus.HistogramVec
	LifecycleOutcomes *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	PostingsChanged   *prometheus.CounterVec
	ProfilesSaved     prometheus.Counter
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "placement_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		LifecycleOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_lifecycle_outcomes_total",
			Help: "Apply, withdraw and not-interested outcomes by posting kind",
		}, []string{"kind", "action", "outcome"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_posting_cache_lookups_total",
			Help: "Posting list cache lookups by result",
		}, []string{"kind", "result"}),
		PostingsChanged: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "placement_postings_changed_total",
			Help: "Admin posting writes by kind and action",
		}, []string{"kind", "action"}),
		ProfilesSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "placement_profiles_saved_total",
			Help: "Profile registrations and updates",
		}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// IncrementLifecycleOutcome counts one lifecycle action result.
func (m *Metrics) IncrementLifecycleOutcome(kind, action, outcome string) {
	if m == nil {
		return
	}
	m.LifecycleOutcomes.WithLabelValues(kind, action, outcome).Inc()
}

// IncrementCacheLookup counts a posting cache hit or miss.
func (m *Metrics) IncrementCacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// IncrementPostingChanged counts an admin create, update or delete.
func (m *Metrics) IncrementPostingChanged(kind, action string) {
	if m == nil {
		return
	}
	m.PostingsChanged.WithLabelValues(kind, action).Inc()
}

// IncrementProfilesSaved counts a profile write.
func (m *Metrics) IncrementProfilesSaved() {
	if m == nil {
		return
	}
	m.ProfilesSaved.Inc()
}
