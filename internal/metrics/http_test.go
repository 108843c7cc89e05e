package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("tokenacl")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "tokenacl"))
	router.GET("/v1/accounts/:address", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"address": c.Param("address")})
	})
	router.POST("/v1/transactions", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_input"})
	})

	for _, address := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/accounts/"+address, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/transactions", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	body := scrape(t, provider)
	assert.Contains(t, body, "tokenacl_http_requests_total")
	assert.Contains(t, body, "tokenacl_http_request_duration_seconds")
	assert.Contains(t, body, "tokenacl_http_requests_in_flight")
	assert.Contains(t, body, `route="/v1/accounts/:address"`)
	assert.Contains(t, body, `status_class="4xx"`)
	assert.Contains(t, body, `route="unmatched"`)
	assert.NotContains(t, body, `route="/v1/accounts/a"`)
}

func TestStatusClass(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{http.StatusOK, "2xx"},
		{http.StatusCreated, "2xx"},
		{http.StatusNotFound, "4xx"},
		{http.StatusConflict, "4xx"},
		{http.StatusServiceUnavailable, "5xx"},
		{0, "other"},
		{999, "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusClass(tt.status), tt.status)
	}
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routeLabel(""))
	assert.Equal(t, "/v1/mint-configs/:mint", routeLabel("/v1/mint-configs/:mint"))
}
