package middleware

import (
	"net/http"
)

// APIKeyMiddleware guards job creation and deletion with a shared-secret
// header check. Status and result polling stay unauthenticated, matching the
// reference deployment's asymmetry.
func APIKeyMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				// A server without a configured key allows no writes at all.
				http.Error(w, "API secret key not configured on the server", http.StatusInternalServerError)
				return
			}

			key := r.Header.Get("x-api-key")
			if key == "" {
				http.Error(w, "API key is missing", http.StatusForbidden)
				return
			}
			if key != secret {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
