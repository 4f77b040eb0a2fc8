package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCORSRouter(cfg *config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware(cfg))
	router.POST("/billings", func(c *gin.Context) { c.Status(201) })
	return router
}

func preflight(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/billings", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSMiddleware_DefaultsAllowDevOrigin(t *testing.T) {
	router := newCORSRouter(&config.CORSConfig{})

	w := preflight(router, "http://localhost:3000")

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	// gin-contrib/cors normalizes allowed headers to lowercase
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "idempotency-key")
}

func TestCORSMiddleware_UnknownOriginRejected(t *testing.T) {
	router := newCORSRouter(&config.CORSConfig{
		AllowedOrigins: []string{"https://pharmacy.example.com"},
	})

	w := preflight(router, "https://evil.example.com")

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCORSMiddleware_IdempotencyKeyAlwaysAllowed(t *testing.T) {
	router := newCORSRouter(&config.CORSConfig{
		AllowedOrigins: []string{"https://pharmacy.example.com"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	w := preflight(router, "https://pharmacy.example.com")

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "idempotency-key")
}
