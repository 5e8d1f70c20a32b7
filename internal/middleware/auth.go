// Package middleware contains HTTP middleware for the SafaStep admin console.
//
// Middleware functions follow the standard Go pattern of wrapping
// http.Handler and are composed with Stack.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/safastep/console/internal/domain"
	"github.com/safastep/console/internal/service"
	"github.com/safastep/console/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// GetIdentity retrieves the verified admin identity from the request
// context. ok is false when the request is unauthenticated.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(domain.Identity)
	return identity, ok
}

func setIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// AuthMiddleware restores the admin session from the identity cookie and
// verifies the stored token against the platform API.
type AuthMiddleware struct {
	auth   service.Authenticator
	codec  *session.Codec
	cache  *session.VerifyCache
	logger *slog.Logger
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(auth service.Authenticator, codec *session.Codec, cache *session.VerifyCache, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   auth,
		codec:  codec,
		cache:  cache,
		logger: logger,
	}
}

// WithIdentity attempts to restore the admin identity from the cookie.
//
// When a stored token exists and was verified recently, the identity is
// placed in the context without a network call. Otherwise the token is
// re-checked against the verify endpoint; a rejected or unreachable
// verification clears the cookie and the request continues
// unauthenticated. The request is never blocked here, that is
// RequireAdmin's job.
func (m *AuthMiddleware) WithIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := m.codec.Store(w, r)

		identity, ok := store.Load()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if m.cache.RecentlyVerified(identity.Token) {
			next.ServeHTTP(w, r.WithContext(setIdentity(r.Context(), identity)))
			return
		}

		sess := service.NewSession(m.auth, store, m.logger)
		if status := sess.VerifyOnStartup(r.Context()); status != service.StatusAuthenticated {
			// Session cleared the stored identity as part of the failed
			// verification. Drop any cached trust in the token too.
			m.cache.Forget(identity.Token)
			m.logger.Info("stored session rejected", "status", status.String())
			next.ServeHTTP(w, r)
			return
		}

		m.cache.MarkVerified(identity.Token)
		next.ServeHTTP(w, r.WithContext(setIdentity(r.Context(), identity)))
	})
}

// RequireAdmin redirects unauthenticated requests to the login screen,
// preserving the requested path for post-login redirect. Use after
// WithIdentity.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetIdentity(r.Context()); !ok {
			returnTo := r.URL.Path
			if r.URL.RawQuery != "" {
				returnTo += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, "/login?return_to="+returnTo, http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Stack composes multiple middleware functions into a single middleware.
// The first middleware in the slice is the outermost (runs first on
// request, last on response).
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
