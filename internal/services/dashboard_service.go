// Package services orchestrates the dataset lifecycle and dashboard
// computation around the pure core.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"

	"trafico/internal/cache"
	"trafico/internal/core"
	applog "trafico/internal/log"
	"trafico/internal/observability"
	"trafico/internal/sources"
)

// ErrNotReady is returned by Dashboard before the first successful Load.
var ErrNotReady = errors.New("dataset not loaded")

// DashboardConfig holds the tunables of a DashboardService.
type DashboardConfig struct {
	Source    string
	Limits    core.Limits
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultDashboardConfig returns sensible defaults
func DefaultDashboardConfig() DashboardConfig {
	return DashboardConfig{
		Source:    "csv",
		Limits:    core.DefaultLimits(),
		CacheSize: 256,
		CacheTTL:  10 * time.Minute,
	}
}

type dataset struct {
	gen   uint64
	store *core.RecordStore
}

type cacheKey struct {
	gen    uint64
	filter core.Filter
}

// DashboardService serves dashboards for the currently loaded dataset.
// The record store is swapped atomically on Load; computed dashboards are
// cached per dataset generation and filter.
type DashboardService struct {
	reader  sources.RowReader
	config  DashboardConfig
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *applog.StructuredLogger

	current atomic.Pointer[dataset]
	gen     atomic.Uint64
	cache   *cache.LRUCache[cacheKey, core.Dashboard]
	group   singleflight.Group
}

// NewDashboardService wires a service around reader. metrics and logger may be nil.
func NewDashboardService(
	reader sources.RowReader,
	config DashboardConfig,
	clock clockwork.Clock,
	metrics *observability.Metrics,
	logger *applog.Logger,
) *DashboardService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if config.CacheSize < 1 {
		config.CacheSize = 1
	}
	return &DashboardService{
		reader:  reader,
		config:  config,
		clock:   clock,
		metrics: metrics,
		logger:  applog.NewStructuredLogger(logger.WithComponent(applog.ComponentDashboard)),
		cache:   cache.NewLRUCache[cacheKey, core.Dashboard](config.CacheSize, config.CacheTTL, cache.WithClock(clock)),
	}
}

// Load reads every row from the source, normalizes them into a new record
// store and makes it current. On error the previous dataset stays in place.
func (s *DashboardService) Load(ctx context.Context) error {
	start := s.clock.Now()

	rows, err := s.reader.ReadRows(ctx)
	if err != nil {
		s.metrics.DatasetLoads.WithLabelValues("error").Inc()
		s.logger.LogError(ctx, "Failed to load dataset", err, applog.OpLoad,
			applog.NewFields().WithDataset(s.config.Source, 0, 0))
		return fmt.Errorf("read rows from %s: %w", s.config.Source, err)
	}

	s.Replace(core.NewRecordStore(rows))

	d := s.current.Load()
	duration := s.clock.Since(start)
	s.metrics.DatasetLoads.WithLabelValues("success").Inc()
	s.metrics.DatasetLoadDur.Observe(duration.Seconds())
	s.logger.LogDatasetLoaded(ctx, s.config.Source, d.store.Len(), d.store.Dropped(), duration)
	return nil
}

// Replace makes store the current dataset and drops every cached dashboard.
func (s *DashboardService) Replace(store *core.RecordStore) {
	gen := s.gen.Add(1)
	s.current.Store(&dataset{gen: gen, store: store})
	s.cache.Purge()

	s.metrics.DatasetReady.Set(1)
	s.metrics.RecordsLoaded.Set(float64(store.Len()))
	s.metrics.RowsDropped.Set(float64(store.Dropped()))
}

// Ready reports whether a dataset has been loaded.
func (s *DashboardService) Ready() bool {
	return s.current.Load() != nil
}

// CheckReadiness returns ErrNotReady until the first dataset is loaded.
func (s *DashboardService) CheckReadiness(_ context.Context) error {
	if !s.Ready() {
		return ErrNotReady
	}
	return nil
}

// Store returns the current record store, or nil before Load.
func (s *DashboardService) Store() *core.RecordStore {
	if d := s.current.Load(); d != nil {
		return d.store
	}
	return nil
}

// Dashboard computes, or returns the cached, dashboard for the requested
// filter. The returned value is shared with the cache and must not be
// modified.
func (s *DashboardService) Dashboard(ctx context.Context, requested core.Filter) (core.Dashboard, error) {
	d := s.current.Load()
	if d == nil {
		return core.Dashboard{}, ErrNotReady
	}
	if err := ctx.Err(); err != nil {
		return core.Dashboard{}, err
	}

	key := cacheKey{gen: d.gen, filter: requested}
	if dash, ok := s.cache.Get(key); ok {
		s.metrics.DashboardRequests.WithLabelValues("hit").Inc()
		s.logger.LogDashboardComputed(ctx, dash, true)
		return dash, nil
	}
	s.metrics.DashboardRequests.WithLabelValues("miss").Inc()

	flightKey := fmt.Sprintf("%d|%s", d.gen, requested)
	v, _, _ := s.group.Do(flightKey, func() (interface{}, error) {
		start := s.clock.Now()
		dash := d.store.Compute(requested, s.config.Limits)
		s.metrics.DashboardComputeDur.Observe(s.clock.Since(start).Seconds())
		if len(dash.Reset()) > 0 {
			s.metrics.FilterResets.Inc()
		}
		s.cache.Set(key, dash)
		return dash, nil
	})

	dash := v.(core.Dashboard)
	s.logger.LogDashboardComputed(ctx, dash, false)
	return dash, nil
}

// CacheStats exposes hit/miss counters of the dashboard cache.
func (s *DashboardService) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Cache returns the dashboard cache so it can be registered with a
// cache.Manager for periodic expiry.
func (s *DashboardService) Cache() cache.Cleaner {
	return s.cache
}
