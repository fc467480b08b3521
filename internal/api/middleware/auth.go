package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/zatekoja/parkdiscovery/internal/domain/entities"
	"github.com/zatekoja/parkdiscovery/internal/infrastructure/observability"
)

type actorKey struct{}

// Authenticator resolves a session token to the actor it was issued to
type Authenticator interface {
	Authenticate(token string) (*entities.Actor, error)
}

// WithActor returns a new context carrying the actor
func WithActor(ctx context.Context, actor *entities.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller, or nil for anonymous requests
func ActorFromContext(ctx context.Context) *entities.Actor {
	actor, _ := ctx.Value(actorKey{}).(*entities.Actor)
	return actor
}

// AuthMiddleware attaches the actor of a valid session token to the request.
// The token is read from the session cookie, then from a Bearer header.
// Requests without a valid token continue anonymously.
func AuthMiddleware(auth Authenticator, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r, cookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.Authenticate(token)
			if err != nil {
				observability.LoggerFromContext(r.Context()).Debug().Err(err).Msg("ignoring invalid session token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func sessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
