package httputil_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	"github.com/allisson/tokenacl/internal/httputil"
)

func pageFrom(t *testing.T, target string) (httputil.Page, error) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return httputil.ParsePage(c)
}

func TestParsePage(t *testing.T) {
	valid := []struct {
		target string
		want   httputil.Page
	}{
		{"/v1/transactions", httputil.Page{Offset: 0, Limit: httputil.DefaultPageLimit}},
		{"/v1/transactions?offset=10&limit=20", httputil.Page{Offset: 10, Limit: 20}},
		{"/v1/transactions?limit=100", httputil.Page{Offset: 0, Limit: 100}},
		{"/v1/transactions?offset=7", httputil.Page{Offset: 7, Limit: httputil.DefaultPageLimit}},
	}
	for _, tt := range valid {
		t.Run(tt.target, func(t *testing.T) {
			page, err := pageFrom(t, tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page)
		})
	}

	invalid := []string{
		"/v1/transactions?offset=-1",
		"/v1/transactions?offset=abc",
		"/v1/transactions?offset=",
		"/v1/transactions?limit=0",
		"/v1/transactions?limit=101",
		"/v1/transactions?limit=1.5",
	}
	for _, target := range invalid {
		t.Run(target, func(t *testing.T) {
			_, err := pageFrom(t, target)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestPage_Next(t *testing.T) {
	page := httputil.Page{Offset: 20, Limit: 10}

	next := page.Next(10)
	require.NotNil(t, next)
	assert.Equal(t, 30, *next)

	assert.Nil(t, page.Next(3))
	assert.Nil(t, page.Next(0))
}
