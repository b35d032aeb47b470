// Package middleware provides HTTP middleware for the API server.
//
// This file resolves the caller's identity. Authentication itself lives
// in an external identity provider; by the time a request reaches this
// service the gateway has already verified the session and forwards the
// resolved user id in the X-User-ID header. This middleware only parses
// and trusts that header.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// UserIDHeader carries the externally resolved user identity.
const UserIDHeader = "X-User-ID"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const userIDContextKey contextKey = "user_id"

// IdentityMiddleware extracts the resolved user id from requests.
type IdentityMiddleware struct {
	logger *slog.Logger
}

// NewIdentityMiddleware creates a new identity middleware.
func NewIdentityMiddleware(logger *slog.Logger) *IdentityMiddleware {
	return &IdentityMiddleware{logger: logger}
}

// RequireUser returns middleware that rejects requests without a valid
// user id header.
func (m *IdentityMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			http.Error(w, "missing user identity", http.StatusUnauthorized)
			return
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			m.logger.Warn("malformed user id header",
				"value", raw,
				"path", r.URL.Path,
			)
			http.Error(w, "invalid user identity", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID retrieves the resolved user id from the context.
// The second return is false if no identity was resolved.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return id, ok
}
