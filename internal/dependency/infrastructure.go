package dependency

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hilthontt/encore/internal/infrastructure/cache"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/hilthontt/encore/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/encore/internal/infrastructure/session"
	"github.com/hilthontt/encore/internal/infrastructure/tracing"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"go.uber.org/zap"
)

const memoryBusBuffer = 256

func (c *Container) initInfrastructure(ctx context.Context) error {
	shutdown, err := tracing.Init(ctx, c.Config.App, c.Config.Tracing)
	if err != nil {
		return err
	}
	c.onClose(shutdown)
	c.Logger.Info("Tracing initialized", zap.String("exporter", c.Config.Tracing.Exporter))

	if dsn := c.Config.Sentry.DSN; dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         dsn,
			Environment: c.Config.App.Env,
			Release:     c.Config.App.Version,
		}); err != nil {
			return fmt.Errorf("failed to initialize sentry: %w", err)
		}
		c.onClose(func(context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		})
		c.Logger.Info("Sentry initialized")
	}

	db, err := database.Open(ctx, c.Config.Postgres, c.Logger)
	if err != nil {
		return err
	}
	c.DB = db
	c.onClose(func(context.Context) error { return database.Close(db) })

	if c.Config.Redis.Enabled() {
		client, err := cache.NewRedis(ctx, c.Config.Redis, c.Logger)
		if err != nil {
			return err
		}
		c.Redis = client
		c.onClose(func(context.Context) error { return client.Close() })
	} else {
		c.Logger.Warn("Redis is not configured, using in-memory sessions, limiters and change feed")
	}

	c.initSessions()
	c.initFeed()
	if err := c.initBus(); err != nil {
		return err
	}
	c.initLimiters()

	if c.Config.Mail.Enabled() {
		c.Mailer = mail.NewClient(c.Config.Mail)
	} else {
		c.Logger.Warn("Mail provider is not configured, /mail and digests are disabled")
	}

	return nil
}

func (c *Container) initSessions() {
	c.Tokens = session.NewTokenManager(c.Config.Session.Secret, c.Config.Session.Issuer, c.Config.Session.TTL)
	if c.Redis != nil {
		c.Sessions = session.NewRedisStore(c.Redis)
		return
	}
	c.Sessions = session.NewMemoryStore()
}

func (c *Container) initFeed() {
	if c.Redis != nil {
		c.Feed = ws.NewRedisFeed(c.Redis, c.Config.LiveQuery.Channel, c.Logger)
	} else {
		c.Feed = ws.NewMemoryFeed()
	}
	c.Hub = ws.NewHub(c.Feed, c.Config.HTTP.AllowedOrigins, c.Logger)
}

func (c *Container) initBus() error {
	if c.Config.RabbitMQ.Enabled() {
		rabbit, err := messaging.NewRabbitMQ(c.Config.RabbitMQ.URL, c.Config.RabbitMQ.Exchange, c.Config.RabbitMQ.Queue, c.Logger)
		if err != nil {
			return err
		}
		c.Bus = rabbit
	} else {
		c.Logger.Warn("RabbitMQ is not configured, using the in-process event bus")
		c.Bus = messaging.NewMemoryBus(memoryBusBuffer, c.Logger)
	}

	bus := c.Bus
	c.onClose(func(context.Context) error {
		bus.Close()
		return nil
	})
	return nil
}

// initLimiters uses the Redis sliding window when Redis is available so
// limits hold across instances. Logins always use the local token bucket.
func (c *Container) initLimiters() {
	rl := c.Config.RateLimiter
	login := ratelimiter.NewKeyedLimiter(float64(rl.MaxRatePerSecond), rl.MaxBurst, rl.CacheTTL)
	c.onClose(func(context.Context) error {
		login.Close()
		return nil
	})
	c.Limiters.Login = login

	if c.Redis != nil {
		c.Limiters.Mutations = ratelimiter.NewRedisLimiter(c.Redis, "mutations", ratelimiter.ModerateWindow())
		c.Limiters.Mail = ratelimiter.NewRedisLimiter(c.Redis, "mail", ratelimiter.StrictWindow())
		return
	}

	mutations := keyedFromWindow(ratelimiter.ModerateWindow(), rl.CacheTTL)
	mailLimit := keyedFromWindow(ratelimiter.StrictWindow(), rl.CacheTTL)
	c.onClose(func(context.Context) error {
		mutations.Close()
		mailLimit.Close()
		return nil
	})
	c.Limiters.Mutations = mutations
	c.Limiters.Mail = mailLimit
}

func keyedFromWindow(w ratelimiter.WindowConfig, idleTTL time.Duration) *ratelimiter.KeyedLimiter {
	perSecond := float64(w.RequestsPerWindow) / w.Window.Seconds()
	return ratelimiter.NewKeyedLimiter(perSecond, w.RequestsPerWindow, idleTTL)
}
