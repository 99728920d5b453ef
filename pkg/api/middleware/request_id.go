package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey keeps middleware context values from colliding with other
// packages.
type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID tags every request with an ID for log and error correlation.
// A caller-supplied X-Request-ID header is honored; otherwise a fresh
// uuid is minted. The ID is placed in the request context and echoed in
// the response header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, requestID)
			w.Header().Set("X-Request-ID", requestID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID returns the request ID from the context, or "" when the
// middleware did not run.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
