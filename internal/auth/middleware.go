package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starford/jotter/internal/models"
)

// CookieName is the cookie that carries the session token in the browser.
const CookieName = "token"

type ctxKey int

const userKey ctxKey = 0

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFrom returns the caller stored in ctx, or nil for an anonymous caller.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// TokenFromRequest returns the bearer token or, failing that, the session
// cookie value.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware resolves the caller from the request token and stores it in
// the request context. Requests without a token, or with an invalid one,
// continue as anonymous; browsing public notes needs no account.
func Middleware(a *Accounts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			u, err := a.Resolve(r.Context(), token)
			if err != nil {
				if !errors.Is(err, ErrInvalidToken) {
					slog.Error("resolve session failed", slog.String("error", err.Error()))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// SetSessionCookie stores token in the browser session cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge int, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
