package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSplitOrigins(t *testing.T) {
	origins, rejected := splitOrigins(" https://a.example.com , http://localhost:3000/ ,, ftp://x.example.com, wallet.example.com")
	assert.Equal(t, []string{"https://a.example.com", "http://localhost:3000"}, origins)
	assert.Equal(t, []string{"ftp://x.example.com", "wallet.example.com"}, rejected)

	origins, rejected = splitOrigins("")
	assert.Empty(t, origins)
	assert.Empty(t, rejected)
}

func TestNewCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	assert.Nil(t, newCORSMiddleware(false, "https://wallet.example.com", discardLogger()))
	assert.Nil(t, newCORSMiddleware(true, "", discardLogger()))
	assert.Nil(t, newCORSMiddleware(true, "not an origin", discardLogger()))

	submit := func(allowOrigins, origin string) *httptest.ResponseRecorder {
		router := gin.New()
		if middleware := newCORSMiddleware(true, allowOrigins, discardLogger()); middleware != nil {
			router.Use(middleware)
		}
		router.POST("/v1/transactions", func(c *gin.Context) {
			c.Header("X-Transaction-Id", "abc")
			c.JSON(http.StatusCreated, gin.H{"status": "committed"})
		})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/transactions", nil)
		req.Header.Set("Origin", origin)
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("AllowedOrigin", func(t *testing.T) {
		w := submit("https://wallet.example.com", "https://wallet.example.com")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "https://wallet.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Transaction-Id")
	})

	t.Run("UnknownOrigin", func(t *testing.T) {
		w := submit("https://wallet.example.com", "https://evil.example.com")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Wildcard", func(t *testing.T) {
		w := submit("*", "https://anyone.example.com")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
