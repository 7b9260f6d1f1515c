// Package api implements the Jotter JSON API using chi.
package api

import (
	"net/http"

	"github.com/starford/jotter/internal/apperr"
	"github.com/starford/jotter/internal/auth"
)

// RequireUser rejects requests that carry no valid session with 401. It
// must run after auth.Middleware.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFrom(r.Context()) == nil {
			writeError(w, r, apperr.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
