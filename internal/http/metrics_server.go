package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/tokenacl/internal/metrics"
)

// MetricsServer exposes the Prometheus scrape endpoint on its own port so it
// can stay off the public API listener.
type MetricsServer struct {
	*listener
}

// NewMetricsServer mounts provider at /metrics.
func NewMetricsServer(host string, port int, logger *slog.Logger, provider *metrics.Provider) *MetricsServer {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggerMiddleware(logger))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if provider != nil {
		router.GET("/metrics", gin.WrapH(provider.Handler()))
	}

	l := newListener("metrics server", host, port, logger)
	l.server.Handler = router
	return &MetricsServer{listener: l}
}

// GetHandler returns the router for in-process tests.
func (s *MetricsServer) GetHandler() http.Handler {
	return s.server.Handler
}
