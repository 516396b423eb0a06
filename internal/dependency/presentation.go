package dependency

import (
	"context"

	"github.com/hilthontt/encore/internal/infrastructure/security"
	"github.com/hilthontt/encore/internal/presentation/api"
	"github.com/hilthontt/encore/internal/presentation/handler/auditlogs"
	"github.com/hilthontt/encore/internal/presentation/handler/auth"
	"github.com/hilthontt/encore/internal/presentation/handler/health"
	"github.com/hilthontt/encore/internal/presentation/handler/live"
	mailHandler "github.com/hilthontt/encore/internal/presentation/handler/mail"
	"github.com/hilthontt/encore/internal/presentation/handler/me"
	"github.com/hilthontt/encore/internal/presentation/handler/notifications"
	"github.com/hilthontt/encore/internal/presentation/handler/requests"
	"github.com/hilthontt/encore/internal/presentation/handler/users"
)

func (c *Container) initPresentation() {
	log := c.Logger
	cookie := security.CookieConfig{
		Name:   c.Config.Session.CookieName,
		Secure: c.Config.Session.Secure,
	}

	handlers := api.Handlers{
		Health:        health.NewHandler(c.healthChecks()),
		Auth:          auth.NewHandler(c.AuthUC, cookie, log),
		Me:            me.NewHandler(c.ParticipantUC, log),
		Requests:      requests.NewHandler(c.SongRequestUC, log),
		Users:         users.NewHandler(c.ParticipantUC, c.AuthUC, log),
		AuditLogs:     auditlogs.NewHandler(c.AuditLogUC, log),
		Notifications: notifications.NewHandler(c.NotificationUC, log),
		Mail:          mailHandler.NewHandler(c.MailUC, log),
		Live:          live.NewHandler(c.Hub, c.SongRequestUC, c.NotificationUC, log),
	}

	c.App = api.NewApplication(*c.Config, handlers, c.AuthUC, c.Limiters, log)
}

func (c *Container) healthChecks() map[string]health.Check {
	checks := map[string]health.Check{
		"postgres": func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	if c.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.Redis.Ping(ctx).Err()
		}
	}
	if c.Mongo != nil {
		checks["mongo"] = func(ctx context.Context) error {
			return c.Mongo.Ping(ctx, nil)
		}
	}

	return checks
}
