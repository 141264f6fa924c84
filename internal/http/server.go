// Package http is the JSON boundary of the service: routing, request
// parsing, response shaping and nothing else. All domain behavior lives in
// the services it delegates to.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Mukasa-Matthew/expense-api/internal/auth"
	"github.com/Mukasa-Matthew/expense-api/internal/cache"
	"github.com/Mukasa-Matthew/expense-api/internal/config"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
	"github.com/Mukasa-Matthew/expense-api/internal/ratelimit"
	"github.com/Mukasa-Matthew/expense-api/internal/services"
)

const (
	analyticsCacheSize = 512
	analyticsCacheTTL  = 30 * time.Second
	authRatePerMinute  = 10
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wires the HTTP boundary to the service layer.
type Server struct {
	httpServer *http.Server
	auth       *auth.Service
	records    *services.RecordService
	analytics  *services.AnalyticsService
	store      Pinger
	logger     *log.Logger

	// analyticsCache keeps hot report reads off the database; every write
	// for a user drops that user's cached views.
	analyticsCache *cache.Cache[any]
	authLimiter    *ratelimit.Limiter
}

func NewServer(cfg *config.Config, authSvc *auth.Service, records *services.RecordService, analytics *services.AnalyticsService, store Pinger, logger *log.Logger) *Server {
	s := &Server{
		auth:           authSvc,
		records:        records,
		analytics:      analytics,
		store:          store,
		logger:         logger.WithComponent(log.ComponentHTTP),
		analyticsCache: cache.New[any](analyticsCacheSize, analyticsCacheTTL),
		authLimiter:    ratelimit.New(authRatePerMinute),
	}
	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.routes(cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(securityHeaders)
	r.Use(log.Middleware(s.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.authLimiter.Middleware)
				r.Post("/register", s.handleRegister)
				r.Post("/login", s.handleLogin)
			})
			r.Post("/logout", s.handleLogout)

			r.Group(func(r chi.Router) {
				r.Use(s.auth.Middleware)
				r.Get("/me", s.handleMe)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", s.handleListExpenses)
				r.Post("/", s.handleCreateExpense)
				r.Get("/summary", s.handleExpenseSummary)
				r.Post("/bulk-delete", s.handleBulkDeleteExpenses)
				r.Get("/{id}", s.handleGetExpense)
				r.Put("/{id}", s.handleUpdateExpense)
				r.Delete("/{id}", s.handleDeleteExpense)
			})

			r.Route("/savings", func(r chi.Router) {
				r.Get("/", s.handleListSavings)
				r.Post("/", s.handleCreateSavings)
				r.Get("/summary", s.handleSavingsSummary)
				r.Post("/bulk-delete", s.handleBulkDeleteSavings)
				r.Get("/{id}", s.handleGetSavings)
				r.Put("/{id}", s.handleUpdateSavings)
				r.Delete("/{id}", s.handleDeleteSavings)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/expenses/pie", s.handleExpensePie)
				r.Get("/savings/pie", s.handleSavingsPie)
				r.Get("/trends", s.handleTrends)
				r.Get("/trends/monthly", s.handleMonthlyTrends)
				r.Get("/overview", s.handleOverview)
			})
		})
	})

	return r
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down", log.FieldOperation, log.OpShutdown)
	s.authLimiter.Stop()
	return s.httpServer.Shutdown(ctx)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	respondMessage(w, http.StatusOK, "ok")
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store unavailable", nil)
		return
	}
	respondMessage(w, http.StatusOK, "ready")
}
