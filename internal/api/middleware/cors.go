package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS creates the CORS middleware for the dashboard frontend. The API
// carries no auth headers and no cookies, so only Content-Type needs to be
// allowed through preflight.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	})
}
