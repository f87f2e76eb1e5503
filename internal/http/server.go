package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"smartfinance/internal/log"
	"smartfinance/internal/middleware/ratelimit"
	"smartfinance/internal/middleware/security"
	"smartfinance/internal/middleware/trace"
	"smartfinance/internal/services"
)

// Dependencies wires the server. Services is required; Ping backs /readyz
// and may be nil.
type Dependencies struct {
	Services           *services.Services
	Ping               func(ctx context.Context) error
	RateLimitPerMinute int
	TrustedProxies     []string
	Logger             *log.Logger
	// Now defaults to time.Now. It picks the default month of overviews
	// and dates export file names.
	Now func() time.Time
}

type Server struct {
	http.Server
	svc  *services.Services
	ping func(ctx context.Context) error
	now  func() time.Time

	logger   *log.Logger
	limiter  *ratelimit.Limiter
	tracer   *trace.Middleware
	detector *security.Detector
	headers  *security.HeadersMiddleware
	metrics  appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	started time.Time
	writes  int64
	exports int64
}

// NewServer configures routes and middleware, returning a ready-to-run
// server. Shutdown must be called to stop background goroutines.
func NewServer(addr string, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.ForComponent("http")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	detector := security.NewDetector()
	for _, cidr := range deps.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, log.FieldError, err)
		}
	}
	s := &Server{
		svc:      deps.Services,
		ping:     deps.Ping,
		now:      now,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: deps.RateLimitPerMinute}),
		tracer:   trace.NewMiddleware(detector.ExtractClientIP),
		detector: detector,
		headers:  security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		metrics:  appMetrics{started: time.Now()},
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(
		s.tracer.Middleware,
		trace.LoggerMiddleware(s.logger),
		middleware.Recoverer,
		middleware.StripSlashes,
		s.headers.Middleware,
		s.detector.Middleware,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("route not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError("").Write(w)
	})

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api", func(api chi.Router) {
		api.Use(s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited))
		api.Use(s.countWrites)

		api.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Get("/{id}", s.handleGetTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
		api.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.Delete("/{id}", s.handleDeleteCategory)
		})
		api.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleCreateBudget)
			r.Get("/overview", s.handleBudgetOverview)
			r.Get("/{id}", s.handleGetBudget)
			r.Put("/{id}", s.handleUpdateBudget)
			r.Delete("/{id}", s.handleDeleteBudget)
		})
		api.Route("/goals", func(r chi.Router) {
			r.Get("/", s.handleListGoals)
			r.Post("/", s.handleCreateGoal)
			r.Get("/summary", s.handleGoalsSummary)
			r.Get("/{id}", s.handleGetGoal)
			r.Put("/{id}", s.handleUpdateGoal)
			r.Delete("/{id}", s.handleDeleteGoal)
			r.Post("/{id}/funds", s.handleAddFunds)
			r.Get("/{id}/progress", s.handleGoalProgress)
		})
		api.Get("/dashboard", s.handleDashboard)
		api.Get("/reports", s.handleReport)
		api.Get("/reports/export", s.handleExportReport)
	})
	return r
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.detector.ExtractClientIP(r))
	TooManyRequestsError().Write(w)
}

// countWrites tracks mutating API requests for /metrics.
func (s *Server) countWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			atomic.AddInt64(&s.metrics.writes, 1)
		}
		next.ServeHTTP(w, r)
	})
}

// respondError writes err as a JSON error and logs server-side failures.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	b := ErrorFromDomain(err)
	if b.statusCode >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, operation,
			log.FieldError, err)
	}
	b.Write(w)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
