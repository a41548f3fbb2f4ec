package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

// Metrics groups the storefront collectors. A nil *Metrics, or one built with a nil
// registerer, records nothing.
type Metrics struct {
	actions       *prometheus.CounterVec
	queryDuration prometheus.Histogram
	queryResults  prometheus.Histogram
	pageClamps    prometheus.Counter
	catalogFetch  *prometheus.CounterVec
	syncWrites    *prometheus.CounterVec
	eventDrops    prometheus.Counter
	profiles      prometheus.Gauge
	evictions     prometheus.Counter
}

// New registers the storefront metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Store actions dispatched, by action type.",
		}, []string{"type"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_duration_seconds",
			Help:      "Time spent filtering, sorting and paginating the catalog.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		queryResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_query_results",
			Help:      "Matching products per catalog query before pagination.",
			Buckets:   []float64{0, 1, 5, 12, 24, 48, 96, 192},
		}),
		pageClamps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_page_clamps_total",
			Help:      "Catalog queries whose requested page was out of range.",
		}),
		catalogFetch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_total",
			Help:      "Catalog fetch attempts, by outcome.",
		}, []string{"outcome"}),
		syncWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_writes_total",
			Help:      "Persisted state writes, by key and outcome.",
		}, []string{"key", "outcome"}),
		eventDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_dropped_total",
			Help:      "Activity events dropped because the publish queue was full.",
		}),
		profiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_profiles",
			Help:      "Profiles with a hydrated store in memory.",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_evictions_total",
			Help:      "Idle profile stores released from memory.",
		}),
	}
	reg.MustRegister(m.actions, m.queryDuration, m.queryResults, m.pageClamps, m.catalogFetch,
		m.syncWrites, m.eventDrops, m.profiles, m.evictions)
	return m
}

func (m *Metrics) IncAction(actionType string) {
	if m == nil || m.actions == nil {
		return
	}
	m.actions.WithLabelValues(normalizeLabel(actionType)).Inc()
}

// ObserveQuery records one catalog query: how long it took, how many products
// matched, and whether the page had to be clamped.
func (m *Metrics) ObserveQuery(d time.Duration, total int, clamped bool) {
	if m == nil || m.queryDuration == nil {
		return
	}
	m.queryDuration.Observe(d.Seconds())
	m.queryResults.Observe(float64(total))
	if clamped {
		m.pageClamps.Inc()
	}
}

func (m *Metrics) IncCatalogFetch(ok bool) {
	if m == nil || m.catalogFetch == nil {
		return
	}
	m.catalogFetch.WithLabelValues(outcome(ok)).Inc()
}

func (m *Metrics) IncStorageWrite(key string, ok bool) {
	if m == nil || m.syncWrites == nil {
		return
	}
	m.syncWrites.WithLabelValues(normalizeLabel(key), outcome(ok)).Inc()
}

func (m *Metrics) IncActivityDrop() {
	if m == nil || m.eventDrops == nil {
		return
	}
	m.eventDrops.Inc()
}

func (m *Metrics) AddEvictions(n int) {
	if m == nil || m.evictions == nil {
		return
	}
	m.evictions.Add(float64(n))
}

func (m *Metrics) SetActiveProfiles(n int) {
	if m == nil || m.profiles == nil {
		return
	}
	m.profiles.Set(float64(n))
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
