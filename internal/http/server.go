package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/cache"
	"finanzas/internal/dashboard"
	"finanzas/internal/identity"
	"finanzas/internal/log"
	"finanzas/internal/middleware/ratelimit"
	"finanzas/internal/middleware/security"
	"finanzas/internal/middleware/trace"
	"finanzas/internal/store"
)

const (
	defaultPageSize   = 10
	viewTimeout       = 10 * time.Second
	janitorInterval   = 5 * time.Minute
	dashboardMaxIdle  = 30 * time.Minute
	exportCacheSize   = 200
	exportCacheTTL    = 10 * time.Minute
	readyCheckTimeout = 5 * time.Second
)

// Config holds the server's listen address and request settings.
type Config struct {
	Addr     string
	PageSize int
	// Location decides "today" for records created without a date.
	Location  *time.Location
	RateLimit ratelimit.Config
}

// Deps are the collaborators the server routes to. Ready may be nil.
type Deps struct {
	Writer   store.Writer
	Boards   *dashboard.Manager
	Verifier *identity.Verifier
	Logger   *log.Logger
	Ready    func(context.Context) error
}

// Server is the finanzas JSON API.
type Server struct {
	http.Server

	writer   store.Writer
	boards   *dashboard.Manager
	verifier *identity.Verifier
	ready    func(context.Context) error
	pageSize int
	location *time.Location
	now      func() time.Time
	started  time.Time

	exports  *cache.LRUCache[[]byte]
	caches   *cache.Manager
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	stopJanitor  chan struct{}
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}

	s := &Server{
		writer:      deps.Writer,
		boards:      deps.Boards,
		verifier:    deps.Verifier,
		ready:       deps.Ready,
		pageSize:    cfg.PageSize,
		location:    cfg.Location,
		now:         time.Now,
		started:     time.Now(),
		exports:     cache.NewLRUCache[[]byte](exportCacheSize, exportCacheTTL),
		caches:      cache.NewManager(),
		limiter:     ratelimit.NewLimiter(cfg.RateLimit),
		detector:    security.NewDetector(),
		stopJanitor: make(chan struct{}),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)
	s.caches.Register(s.exports)
	s.caches.StartCleanup(context.Background(), janitorInterval)
	go s.evictIdleDashboards()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.Handle("GET /api/transactions", s.api(s.handleListTransactions))
	mux.Handle("POST /api/transactions", s.api(s.handleCreateTransaction))
	mux.Handle("PUT /api/transactions/{id}", s.api(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", s.api(s.handleDeleteTransaction))
	mux.Handle("GET /api/dashboard", s.api(s.handleDashboard))
	mux.Handle("PUT /api/dashboard/filter", s.api(s.handleSetFilter))
	mux.Handle("GET /api/export.csv", s.api(s.handleExportCSV))
	mux.Handle("GET /api/export.xlsx", s.api(s.handleExportXLSX))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = log.Middleware(logger, trace.FromRequest)(handler)
	handler = headers.Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// api wraps an owner-scoped handler with authentication and the per-owner
// write limit.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	limited := s.limiter.Middleware(ownerOf, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
			WarnContext(r.Context(), "Rate limit exceeded", log.FieldOwnerID, ownerOf(r), log.FieldMethod, r.Method)
		TooManyRequestsError().Write(w)
	}, http.MethodPost, http.MethodPut, http.MethodDelete)(h)
	return s.requireOwner(limited)
}

// requireOwner authenticates the bearer token and puts its owner in the
// request context.
func (s *Server) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner, err := s.verifier.FromRequest(r)
		if err != nil {
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
				WarnContext(r.Context(), "Authentication failed", log.FieldError, err.Error())
			ErrorFor(err).Write(w)
			return
		}
		ctx := identity.WithOwner(r.Context(), owner)
		ctx = log.NewContext(ctx, log.FromContext(ctx).WithOwner(owner))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) evictIdleDashboards() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.boards.EvictIdle(dashboardMaxIdle); n > 0 {
				log.FromContext(context.Background()).Debug("Evicted idle dashboards", log.FieldCount, n)
			}
		case <-s.stopJanitor:
			return
		}
	}
}

// Shutdown stops background work and then the HTTP server. Dashboards are
// owned by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		close(s.stopJanitor)
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
