package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegistry(reg)

	m.DashboardRequests.WithLabelValues("hit").Inc()
	m.DashboardRequests.WithLabelValues("miss").Add(2)
	m.RecordsLoaded.Set(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DashboardRequests.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DashboardRequests.WithLabelValues("miss")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.RecordsLoaded))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "trafico_dashboard_requests_total")
	assert.Contains(t, names, "trafico_records_loaded")
}

func TestNewMetricsWithRegistry_DuplicatePanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetricsWithRegistry(reg)
	assert.Panics(t, func() { NewMetricsWithRegistry(reg) })
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()
	a.FilterResets.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.FilterResets))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.FilterResets))
}
