package handler

import (
	"context"
	"net/http"
)

// userIDHeader carries the authenticated user identity, set by the gateway
// after JWT verification.
const userIDHeader = "X-User-ID"

type userKey struct{}

// UserFrom extracts the authenticated user id from the context.
func UserFrom(ctx context.Context) string {
	if id, ok := ctx.Value(userKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireUser rejects requests without a gateway-supplied user identity and
// stores the id in the request context for the handlers.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(userIDHeader)
		if id == "" {
			sendError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey{}, id)))
	})
}
