// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	aclHTTP "github.com/allisson/tokenacl/internal/acl/http"
	"github.com/allisson/tokenacl/internal/config"
	ledgerHTTP "github.com/allisson/tokenacl/internal/ledger/http"
	"github.com/allisson/tokenacl/internal/metrics"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the public API listener.
type Server struct {
	*listener
	db     Pinger
	router *gin.Engine
}

// NewServer creates a new HTTP server. A nil db reports the server as not ready.
func NewServer(
	db Pinger,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		listener: newListener("http server", host, port, logger),
		db:       db,
	}
}

// SetupRouter configures the Gin router with all routes and middleware.
func (s *Server) SetupRouter(
	cfg *config.Config,
	transactionHandler *ledgerHTTP.TransactionHandler,
	accountHandler *ledgerHTTP.AccountHandler,
	mintConfigHandler *aclHTTP.MintConfigHandler,
	metricsProvider *metrics.Provider,
) {
	// Create Gin engine without default middleware
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(RequestLoggerMiddleware(s.logger))

	// Optional middleware

	if corsMiddleware := newCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	// Health and readiness endpoints (outside API versioning)
	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	// API v1 routes
	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", transactionHandler.SubmitHandler)
		transactions.GET("", transactionHandler.ListHandler)
		transactions.GET("/:id", transactionHandler.GetHandler)
	}

	v1.GET("/accounts/:address", accountHandler.GetHandler)
	v1.GET("/mint-configs/:mint", mintConfigHandler.GetHandler)

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if s.db == nil || s.db.PingContext(ctx) != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}
