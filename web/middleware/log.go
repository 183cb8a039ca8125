package middleware

import (
	"log/slog"
	"net/http"

	"geostories.app/core/log"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

// WithLogger puts a request scoped logger in the context, tagged with the
// incoming request id or a fresh one.
func WithLogger(l *slog.Logger) middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := log.IntoContext(r.Context(), l.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
