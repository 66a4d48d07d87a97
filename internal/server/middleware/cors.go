package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSConfig lists the origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig allows every origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader},
	}
}

// CORS answers preflight requests and sets CORS headers.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: config.AllowedOrigins,
		AllowedMethods: config.AllowedMethods,
		AllowedHeaders: config.AllowedHeaders,
		ExposedHeaders: []string{RequestIDHeader},
	})
	return c.Handler
}
