package middleware

import (
	"net/http"

	"github.com/cardvault/cardvault/internal/auth"
)

// RequireAdmin returns middleware that restricts a route to actors
// carrying the ADMIN role. Must be applied after Auth.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := auth.ActorFromContext(r.Context())
			if actor == nil {
				writeAuthError(w)
				return
			}

			if !actor.IsAdmin() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"Access Denied."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
