package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard.
type Metrics struct {
	DatasetReady   prometheus.Gauge
	RecordsLoaded  prometheus.Gauge
	RowsDropped    prometheus.Gauge
	DatasetLoads   *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDur prometheus.Histogram

	DashboardRequests   *prometheus.CounterVec // labels: cache={hit,miss}
	DashboardComputeDur prometheus.Histogram
	FilterResets        prometheus.Counter
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trafico",
			Name:      "dataset_ready",
			Help:      help("1 once a dataset has been loaded, 0 before."),
		}),
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trafico",
			Name:      "records_loaded",
			Help:      help("Normalized records in the current dataset."),
		}),
		RowsDropped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "trafico",
			Name:      "rows_dropped",
			Help:      help("Raw rows discarded by the last load because the year was unusable."),
		}),
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trafico",
			Name:      "dataset_loads_total",
			Help:      help("Dataset load attempts by outcome."),
		}, []string{"outcome"}),
		DatasetLoadDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trafico",
			Name:      "dataset_load_duration_seconds",
			Help:      help("Time to read and normalize the dataset."),
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DashboardRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trafico",
			Name:      "dashboard_requests_total",
			Help:      help("Dashboard computations requested, by cache result."),
		}, []string{"cache"}),
		DashboardComputeDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trafico",
			Name:      "dashboard_compute_duration_seconds",
			Help:      help("Duration of an uncached dashboard computation."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		FilterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "trafico",
			Name:      "filter_resets_total",
			Help:      help("Requests whose filter was reset because no record matched it."),
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.DatasetReady,
		m.RecordsLoaded,
		m.RowsDropped,
		m.DatasetLoads,
		m.DatasetLoadDur,
		m.DashboardRequests,
		m.DashboardComputeDur,
		m.FilterResets,
	}
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry registers the metrics on reg instead of the default registry.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as
// many as they need.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
