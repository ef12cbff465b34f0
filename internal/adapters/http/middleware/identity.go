package middleware

import (
	"context"
	"net/http"

	"github.com/dverbeek84/raciflow/internal/domain"
)

// Caller identity headers. Authentication happens upstream (gateway or
// session layer); this service trusts the resolved identity it is handed.
const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
)

// actorKey is the context key for storing the caller identity.
type actorKey struct{}

// WithActor returns a new context with the given actor stored in it.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext extracts the caller identity from the context.
// The second return value is false when no identity was supplied.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// Identity returns middleware that resolves the caller identity from the
// X-User-ID and X-User-Role headers and stores it in the request context.
// A missing X-User-Role defaults to contributor. Requests without X-User-ID
// pass through without an identity; handlers that require one reject them.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get(headerUserID)
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			role := domain.Role(r.Header.Get(headerUserRole))
			if role == "" {
				role = domain.RoleContributor
			}

			ctx := WithActor(r.Context(), domain.Actor{UserID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
