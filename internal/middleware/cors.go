package middleware

import (
	"net/http"

	"github.com/ysenguloglu/On-Muhasebe-Web-App/internal/config"

	"github.com/rs/cors"
)

// exposedHeaders lets the browser read the list cache state and the name of
// the downloaded stock spreadsheet.
var exposedHeaders = []string{"X-Cache", "Content-Disposition"}

// NewCORS builds the CORS wrapper from the server config. Credentials are
// only allowed for an explicit origin list, never for "*".
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.Server.CorsAllowedOrigins
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   cfg.Server.CorsAllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           600,
	})
	return c.Handler
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
