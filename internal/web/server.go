package web

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/emiliopalmerini/authorsite/internal/billing"
	"github.com/emiliopalmerini/authorsite/internal/experiments"
	"github.com/emiliopalmerini/authorsite/internal/leads"
	"github.com/emiliopalmerini/authorsite/internal/ports"
	"github.com/emiliopalmerini/authorsite/internal/shared/middleware"
	"github.com/emiliopalmerini/authorsite/internal/stats"
)

// Services groups the application services the HTTP API exposes.
type Services struct {
	Experiments *experiments.Service
	Admin       *experiments.Admin
	Leads       *leads.Service
	Billing     *billing.Service
	Stats       *stats.Service
}

type Server struct {
	router  *http.ServeMux
	port    int
	svc     Services
	limiter ports.RateLimiter
	logger  ports.Logger
	proxies []netip.Prefix
}

// NewServer wires the routes. A nil limiter disables rate limiting.
func NewServer(port int, svc Services, limiter ports.RateLimiter, logger ports.Logger) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		port:    port,
		svc:     svc,
		limiter: limiter,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Public API
	s.router.Handle("GET /api/experiments", s.public(s.handleGetExperiments))
	s.router.Handle("POST /api/leads", s.public(s.handleCaptureLead))
	s.router.Handle("GET /api/domains/validate", s.public(s.handleValidateDomain))

	// Webhooks
	s.router.HandleFunc("POST /api/webhooks/stripe", s.handleStripeWebhook)

	// Administration
	s.router.HandleFunc("POST /api/admin/experiments", s.handleCreateExperiment)
	s.router.HandleFunc("GET /api/admin/experiments", s.handleListExperiments)
	s.router.HandleFunc("GET /api/admin/experiments/{id}", s.handleGetExperiment)
	s.router.HandleFunc("POST /api/admin/experiments/{id}/activate", s.handleActivateExperiment)
	s.router.HandleFunc("POST /api/admin/experiments/{id}/deactivate", s.handleDeactivateExperiment)
	s.router.HandleFunc("DELETE /api/admin/experiments/{id}", s.handleDeleteExperiment)
	s.router.HandleFunc("GET /api/stats", s.handleStats)
}

func (s *Server) public(h http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return h
	}
	return middleware.RateLimit(s.limiter, s.logger)(h)
}

// WithTrustedProxies sets the proxies whose X-Forwarded-For header is
// believed when resolving the client address.
func (s *Server) WithTrustedProxies(proxies []netip.Prefix) *Server {
	s.proxies = proxies
	return s
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return middleware.ClientIP(s.proxies)(middleware.RequestLogger(s.logger)(s.router))
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting server", "addr", server.Addr, "rate_limited", s.limiter != nil)

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", "error", err)
		}
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Graceful shutdown
	}
	return err
}
