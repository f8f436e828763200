package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/nikolayk812/checkout-demo/internal/domain"
)

// Identity headers set by the upstream auth gateway.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

type actorKey struct{}

// Authenticate reads the caller identity from the gateway headers and rejects
// requests without one.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderUserID)
		if id == "" {
			http.Error(w, "Unauthorized: user identity required", http.StatusUnauthorized)
			return
		}

		role := domain.Role(r.Header.Get(HeaderUserRole))
		if role == "" {
			role = domain.RoleUser
		}
		if !role.Valid() {
			http.Error(w, "Unauthorized: unknown role", http.StatusUnauthorized)
			return
		}

		actor := domain.Actor{
			ID:    id,
			Role:  role,
			Email: r.Header.Get(HeaderUserEmail),
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole must run after Authenticate.
func RequireRole(roles ...domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				http.Error(w, "Unauthorized: user identity required", http.StatusUnauthorized)
				return
			}
			if !slices.Contains(roles, actor.Role) {
				http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}
