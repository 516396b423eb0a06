package middlewares

import (
	"fmt"
	"math"
	"net/http"

	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/ratelimiter"
	"go.uber.org/zap"
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ClientIP keys by remote address. RealIP must run first.
func ClientIP(r *http.Request) string {
	return r.RemoteAddr
}

// ActorOrIP keys by the authenticated caller, falling back to the address.
func ActorOrIP(r *http.Request) string {
	if actor, ok := GetActorFromContext(r.Context()); ok {
		return "uid:" + actor.UID
	}
	return "ip:" + r.RemoteAddr
}

// RateLimit fails open when the limiter itself errors.
func RateLimit(limiter ratelimiter.Limiter, key KeyFunc, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sourceKey := key(r)

			decision, err := limiter.Allow(r.Context(), sourceKey)
			if err != nil {
				log.Error("failed to check rate limit", zap.Error(err), zap.String("source", sourceKey))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))

			if !decision.Allowed {
				log.Warn("rate limit exceeded",
					zap.String("source", sourceKey),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				json.WriteRateLimitError(w, int(math.Ceil(decision.RetryAfter.Seconds())))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
