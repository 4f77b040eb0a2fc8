package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/medlane/pharmacare-api/internal/config"
)

// Fallbacks for an empty CORS configuration. The pharmacy dashboard runs on
// localhost:3000 in development.
var (
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:3001",
		"http://127.0.0.1:3000",
	}
	defaultMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultHeaders = []string{
		"Accept",
		"Authorization",
		"Content-Type",
		"X-CSRF-Token",
		"X-Request-ID",
		"Origin",
		"Idempotency-Key",
	}
)

// CORSMiddleware builds the CORS policy from configuration. The Idempotency-Key
// header is always allowed; without it browser clients could not reach the
// billing endpoint.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultOrigins
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = defaultMethods
	}

	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultHeaders
	} else if !containsHeader(headers, "Idempotency-Key") {
		headers = append(headers, "Idempotency-Key")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func containsHeader(headers []string, name string) bool {
	for _, h := range headers {
		if h == name {
			return true
		}
	}
	return false
}
