package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider(t *testing.T) {
	provider, err := NewProvider("tokenacl")
	require.NoError(t, err)
	assert.Equal(t, "tokenacl", provider.Namespace())
	require.NotNil(t, provider.MeterProvider())

	counter, err := provider.MeterProvider().Meter("test").Int64Counter("tokenacl_probe_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
	assert.Contains(t, w.Body.String(), `service_name="tokenacl"`)

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestProvider_ShutdownZeroValue(t *testing.T) {
	assert.NoError(t, (&Provider{}).Shutdown(context.Background()))
}
