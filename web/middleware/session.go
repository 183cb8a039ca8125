package middleware

import (
	"net/http"

	"geostories.app/core/session"
	"geostories.app/core/web/apierr"
)

// WithSession exposes the configured session, if any, to handlers.
func WithSession(sess *session.Session) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := session.IntoContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that need a session when none is
// configured.
func RequireSession() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.FromContext(r.Context()) == nil {
				apierr.Write(w, apierr.NoSessionError, http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
