package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

type contextKey string

const adminKey contextKey = "admin"

// AdminFromContext returns the authenticated admin username.
func AdminFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(adminKey).(string)
	return v, ok
}

// WithAdmin stores the authenticated admin username in the context.
func WithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, adminKey, username)
}

// RequireAdmin verifies the Authorization: Bearer token and stores the admin
// identity in the request context. Missing, malformed, expired and tampered
// tokens are all rejected with the same 401 body so callers cannot probe
// which check failed.
func RequireAdmin(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, err := VerifyToken(bearerToken(r), secret)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "Invalid or expired token",
				})
				return
			}

			ctx := WithAdmin(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The legacy
// admin panel sent the token in X-Admin-Token; both are accepted.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return token
		}
	}
	return r.Header.Get("X-Admin-Token")
}
