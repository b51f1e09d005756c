package middleware

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
)

// Timeout bounds the context of every request.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Wrap adds request ids, access logging to out, CORS for origins and panic
// recovery around h.
func Wrap(h http.Handler, out io.Writer, origins []string, timeout time.Duration) http.Handler {
	h = Timeout(timeout)(h)
	h = RequestID(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)(h)
	h = handlers.CombinedLoggingHandler(out, h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}
