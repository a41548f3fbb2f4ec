package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncAction("ADD_TO_CART")
	m.IncAction("ADD_TO_CART")
	m.IncAction("")
	m.IncCatalogFetch(true)
	m.IncCatalogFetch(false)
	m.IncStorageWrite("cart", true)
	m.IncActivityDrop()
	m.AddEvictions(3)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	tests := []struct {
		name     string
		metric   string
		labels   map[string]string
		expected float64
	}{
		{"actions by type", "storefront_actions_total", map[string]string{"type": "ADD_TO_CART"}, 2},
		{"empty type", "storefront_actions_total", map[string]string{"type": "unknown"}, 1},
		{"fetch success", "storefront_catalog_fetch_total", map[string]string{"outcome": "success"}, 1},
		{"fetch failure", "storefront_catalog_fetch_total", map[string]string{"outcome": "failure"}, 1},
		{"storage write", "storefront_storage_writes_total", map[string]string{"key": "cart", "outcome": "success"}, 1},
		{"dropped events", "storefront_activity_events_dropped_total", nil, 1},
		{"evictions", "storefront_profile_evictions_total", nil, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := counterValue(mfs, tt.metric, tt.labels)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMetrics_ObserveQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveQuery(3*time.Millisecond, 13, true)
	m.ObserveQuery(time.Millisecond, 0, false)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	results := findMetricFamily(mfs, "storefront_catalog_query_results")
	require.NotNil(t, results)
	assert.Equal(t, uint64(2), results.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.Equal(t, float64(13), results.GetMetric()[0].GetHistogram().GetSampleSum())

	clamps, err := counterValue(mfs, "storefront_catalog_page_clamps_total", nil)
	require.NoError(t, err)
	assert.Equal(t, float64(1), clamps)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncAction("ADD_TO_CART")
		m.ObserveQuery(time.Millisecond, 1, false)
		m.IncCatalogFetch(true)
		m.IncStorageWrite("cart", false)
		m.SetActiveProfiles(3)
		m.IncActivityDrop()
		m.AddEvictions(1)
	})

	unregistered := New(nil)
	assert.NotPanics(t, func() {
		unregistered.IncAction("ADD_TO_CART")
		unregistered.SetActiveProfiles(1)
	})
}

func counterValue(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
