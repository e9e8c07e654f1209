package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/api/response"
)

// APIKeyMiddleware requires a valid X-API-Key header on mutating routes.
// The expected key comes from INTERNAL_API_KEY; if that is unset every
// request is rejected rather than letting the route fall open.
func APIKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expected := os.Getenv("INTERNAL_API_KEY")
		if expected == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "API key not configured")
			return
		}

		provided := r.Header.Get("X-API-Key")
		if provided == "" {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
