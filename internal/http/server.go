// Package http provides the gateway HTTP server: the login API, health endpoints and the
// gatekept pass-through to the portal application.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	authHTTP "github.com/svit-erp/portalgate/internal/auth/http"
	"github.com/svit-erp/portalgate/internal/config"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
	"github.com/svit-erp/portalgate/internal/httputil"
	"github.com/svit-erp/portalgate/internal/metrics"
)

// readinessTimeout bounds the database ping of /ready.
const readinessTimeout = 2 * time.Second

// Server represents the gateway HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger

	// ctx scopes background work started by the router (rate limiter cleanup).
	ctx    context.Context
	cancel context.CancelFunc

	checks []readinessCheck
}

// readinessCheck is an extra dependency reported by /ready next to the database.
type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// NewServer creates a new HTTP server. db may be nil, in which case /ready reports not ready.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		db:     db,
		server: newHTTPServer(host, port, nil),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddReadinessCheck registers a dependency that /ready reports under name. Call it before
// Start.
func (s *Server) AddReadinessCheck(name string, check func(ctx context.Context) error) {
	s.checks = append(s.checks, readinessCheck{name: name, check: check})
}

// SetupRouter builds the router.
//
// Routes:
//   - GET /health, GET /ready
//   - POST /api/auth/login (optionally rate limited per IP), POST /api/auth/logout, GET /api/auth/session
//   - everything else: gatekeeper, then upstream (404 when upstream is nil)
func (s *Server) SetupRouter(
	cfg *config.Config,
	authHandler *authHTTP.AuthHandler,
	gatekeeper *authDomain.Gatekeeper,
	cookie authHTTP.SessionCookie,
	upstream http.Handler,
	metricsProvider *metrics.Provider,
	decisions metrics.DecisionRecorder,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOriginList(), s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	auth := router.Group("/api/auth")
	{
		login := []gin.HandlerFunc{}
		if cfg.RateLimitLoginEnabled {
			login = append(login, authHTTP.LoginRateLimitMiddleware(
				s.ctx,
				cfg.RateLimitLoginRequestsPerSec,
				cfg.RateLimitLoginBurst,
				s.logger,
			))
		}
		login = append(login, authHandler.LoginHandler)

		auth.POST("/login", login...)
		auth.POST("/logout", authHandler.LogoutHandler)
		auth.GET("/session", authHandler.SessionHandler)
	}

	if decisions == nil {
		decisions = metrics.NewNoOpDecisionRecorder()
	}

	router.NoRoute(
		authHTTP.GatekeeperMiddleware(gatekeeper, cookie, decisions, s.logger),
		forwardHandler(upstream),
	)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))
	return listen(s.server, "server")
}

// Shutdown gracefully shuts down the HTTP server and stops background router work.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the credential store and every registered dependency.
func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	ready := true
	components := gin.H{}

	database := "ok"
	if s.db == nil {
		database = "error"
	} else if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("readiness check failed", slog.String("component", "database"), slog.Any("error", err))
		database = "error"
	}
	components["database"] = database
	ready = ready && database == "ok"

	for _, rc := range s.checks {
		status := "ok"
		if err := rc.check(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.String("component", rc.name), slog.Any("error", err))
			status = "error"
			ready = false
		}
		components[rc.name] = status
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// forwardHandler passes an allowed request to upstream. Without an upstream every allowed
// request is a 404, which is not worth an error log line.
func forwardHandler(upstream http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if upstream == nil {
			httputil.HandleErrorGin(c, apperrors.ErrNotFound, nil)
			return
		}
		upstream.ServeHTTP(c.Writer, c.Request)
	}
}

func newHTTPServer(host string, port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// listen runs server until it is shut down.
func listen(server *http.Server, name string) error {
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
