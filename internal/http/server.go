package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/cases"

	"trafico/internal/core"
	applog "trafico/internal/log"
	"trafico/internal/middleware/ratelimit"
	"trafico/internal/middleware/security"
	"trafico/internal/middleware/trace"
	"trafico/internal/narrative"
	appweb "trafico/web"
)

// DashboardProvider computes dashboards for the current dataset.
type DashboardProvider interface {
	Dashboard(ctx context.Context, requested core.Filter) (core.Dashboard, error)
	CheckReadiness(ctx context.Context) error
}

// Options tunes a Server. Zero values get defaults.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Gatherer backs /metrics; defaults to the global registry.
	Gatherer       prometheus.Gatherer
	TrustedProxies []string
	Clock          clockwork.Clock
	StaticMaxAge   int
}

type Server struct {
	http.Server
	templates *template.Template
	provider  DashboardProvider
	logger    *applog.Logger
	clock     clockwork.Clock
	started   time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, templates and middleware, returning a
// ready-to-run server.
func NewServer(addr string, provider DashboardProvider, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.StaticMaxAge <= 0 {
		opts.StaticMaxAge = 3600
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		provider: provider,
		logger:   logger,
		clock:    opts.Clock,
		started:  opts.Clock.Now(),
		detector: security.NewDetector(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Clock:             opts.Clock,
		}),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(template.FuncMap{
		"title": func(s string) string { return cases.Title(narrative.Locale).String(s) },
	}).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	} else {
		s.templates = t
	}

	limited := s.limiter.Middleware(s.detector.ExtractClientIP, nil)

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := security.StaticAssetMiddleware(opts.StaticMaxAge)(http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.StripPrefix("/static/", static))
	}
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/ui/summary", limited(http.HandlerFunc(s.handleSummary)))
	mux.Handle("/api/dashboard", limited(http.HandlerFunc(s.handleAPIDashboard)))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.Handler = s.tracer.Middleware(headers.Middleware(s.detector.Middleware(mux)))
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
// Repeated calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
		m := s.tracer.GetMetrics()
		s.logger.InfoContext(ctx, "HTTP server stopped",
			"requests", m.TotalRequests,
			"avg_response_us", m.AverageResponseTime,
			"rate_limited", s.limiter.GetMetrics().TotalHits,
			"suspicious", s.detector.SuspiciousRequests())
	})
	return err
}
