package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// newCORSMiddleware lets browser wallets submit transactions and read back the
// transaction id header. It returns nil when CORS is off or no usable origin
// is configured. A lone "*" allows every origin.
func newCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, rejected := splitOrigins(allowOrigins)
	for _, origin := range rejected {
		logger.Warn("ignoring malformed cors origin", slog.String("origin", origin))
	}

	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "X-Transaction-Id"},
		MaxAge:        12 * time.Hour,
	}

	switch {
	case len(origins) == 1 && origins[0] == "*":
		cfg.AllowAllOrigins = true
	case len(origins) == 0:
		logger.Warn("cors enabled without any usable origin")
		return nil
	default:
		cfg.AllowOrigins = origins
	}

	logger.Info("cors enabled", slog.Any("origins", origins))
	return cors.New(cfg)
}

// splitOrigins parses a comma-separated origin list. Entries must be a bare
// http(s) scheme and host, or "*".
func splitOrigins(raw string) (origins, rejected []string) {
	for _, part := range strings.Split(raw, ",") {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if origin == "*" || validOrigin(origin) {
			origins = append(origins, strings.TrimSuffix(origin, "/"))
			continue
		}
		rejected = append(rejected, origin)
	}
	return origins, rejected
}

func validOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return (u.Path == "" || u.Path == "/") && u.RawQuery == "" && u.Fragment == ""
}
