package middlewares

import (
	"context"
	"errors"
	"net/http"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/security"
	"go.uber.org/zap"
)

type contextKey string

const actorContextKey contextKey = "actor"

// Authenticator resolves a session token to the caller.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func GetActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}

// RequireSession rejects requests without a live session and stores the
// caller in the request context.
func RequireSession(auth Authenticator, cookie security.CookieConfig, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := security.SessionToken(r, cookie)
			if token == "" {
				json.WriteUnauthorizedError(w)
				return
			}

			actor, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, domain.ErrAccountDisabled):
					security.ClearSessionCookie(w, cookie)
					json.WriteForbiddenError(w, err.Error())
				case errors.Is(err, domain.ErrUnauthenticated):
					security.ClearSessionCookie(w, cookie)
					json.WriteUnauthorizedError(w)
				case errors.Is(err, domain.ErrNoRole):
					json.WriteForbiddenError(w, err.Error())
				default:
					log.Error("failed to authenticate request", zap.Error(err), zap.String("path", r.URL.Path))
					json.WriteInternalError(w)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}

// RequireRole lets the request through when allow accepts the caller's roles.
func RequireRole(allow func(domain.Roles) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorFromContext(r.Context())
			if !ok {
				json.WriteUnauthorizedError(w)
				return
			}
			if !allow(actor.Roles) {
				json.WriteForbiddenError(w, "You do not have access to this resource")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Staff(r domain.Roles) bool { return r.IsStaff() }

func Owner(r domain.Roles) bool { return r.IsOwner }
