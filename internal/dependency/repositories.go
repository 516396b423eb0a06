package dependency

import (
	"context"
	"fmt"

	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/repository"
	"go.uber.org/zap"
)

type indexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

func (c *Container) initRepositories(ctx context.Context) error {
	c.AccountRepo = repository.NewAccountRepository(c.DB, c.Logger)
	c.ParticipantRepo = repository.NewParticipantRepository(c.DB, c.Logger)
	c.SongRequestRepo = repository.NewSongRequestRepository(c.DB, c.Logger)
	c.NotificationRepo = repository.NewNotificationRepository(c.DB, c.Logger)

	if c.Config.Audit.Driver != "mongo" {
		c.AuditLogRepo = repository.NewAuditLogRepository(c.DB, c.Logger)
		return nil
	}

	client, err := database.NewMongoClient(ctx, c.Config.Mongo, c.Logger)
	if err != nil {
		return err
	}
	c.Mongo = client
	c.onClose(func(ctx context.Context) error { return database.DisconnectMongo(ctx, client) })

	c.AuditLogRepo = repository.NewMongoAuditLogRepository(client.Database(c.Config.Mongo.Database))
	if ensurer, ok := c.AuditLogRepo.(indexEnsurer); ok {
		if err := ensurer.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("failed to create audit log indexes: %w", err)
		}
	}

	c.Logger.Info("Audit logs are stored in MongoDB", zap.String("database", c.Config.Mongo.Database))
	return nil
}
