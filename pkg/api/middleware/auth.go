package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatforge/chatforge/pkg/api/response"
)

const userIDKey contextKey = "user_id"

// Authenticator validates an access token and returns the user ID.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// ExtractToken pulls the access token from the Authorization header
// (Bearer scheme) or the X-Auth-Token header.
func ExtractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

// Auth returns a middleware that rejects requests without a valid access
// token and stores the authenticated user ID in the request context.
func Auth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, response.ErrCodeUnauthorized,
					"missing access token", GetRequestID(r.Context()))
				return
			}

			userID, err := authn.Authenticate(token)
			if err != nil {
				response.HandleError(w, err, GetRequestID(r.Context()))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}
