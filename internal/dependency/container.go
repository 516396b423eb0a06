package dependency

import (
	"context"
	"errors"
	"fmt"
	"sync"

	auditLogUseCase "github.com/hilthontt/encore/internal/application/usecases/auditlog"
	authUseCase "github.com/hilthontt/encore/internal/application/usecases/auth"
	mailUseCase "github.com/hilthontt/encore/internal/application/usecases/mail"
	notificationUseCase "github.com/hilthontt/encore/internal/application/usecases/notification"
	participantUseCase "github.com/hilthontt/encore/internal/application/usecases/participant"
	songRequestUseCase "github.com/hilthontt/encore/internal/application/usecases/songrequest"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/configs"
	"github.com/hilthontt/encore/internal/infrastructure/events"
	"github.com/hilthontt/encore/internal/infrastructure/jobs"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/hilthontt/encore/internal/infrastructure/session"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"github.com/hilthontt/encore/internal/presentation/api"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Container struct {
	Config *configs.Config
	Logger *logger.Logger

	DB    *gorm.DB
	Redis *redis.Client
	Mongo *mongo.Client

	Bus      messaging.Bus
	Feed     ws.ChangeFeed
	Hub      *ws.Hub
	Sessions session.Store
	Tokens   *session.TokenManager
	Mailer   mail.Sender
	Limiters api.Limiters

	AccountRepo      domain.AccountRepository
	ParticipantRepo  domain.ParticipantRepository
	SongRequestRepo  domain.SongRequestRepository
	NotificationRepo domain.NotificationRepository
	AuditLogRepo     domain.AuditLogRepository

	AuditLogUC     auditLogUseCase.AuditLogUseCase
	AuthUC         authUseCase.AuthUseCase
	SongRequestUC  songRequestUseCase.SongRequestUseCase
	ParticipantUC  participantUseCase.ParticipantUseCase
	NotificationUC notificationUseCase.NotificationUseCase
	MailUC         mailUseCase.MailUseCase

	Consumer  *events.NotificationConsumer
	DigestJob *jobs.DigestJob

	App *api.Application

	closers []func(ctx context.Context) error
}

// NewContainer connects every backing service and wires the application.
// Optional services (Redis, RabbitMQ, Mongo, mail) fall back to in-process
// implementations when they are not configured.
func NewContainer(ctx context.Context, cfg *configs.Config, log *logger.Logger) (*Container, error) {
	c := &Container{
		Config: cfg,
		Logger: log,
	}

	c.Logger.Info("Initializing Encore dependencies", zap.String("env", cfg.App.Env))

	if err := c.initInfrastructure(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	if err := c.initRepositories(ctx); err != nil {
		_ = c.Close(context.Background())
		return nil, fmt.Errorf("error initializing repositories: %w", err)
	}

	c.initUseCases()
	c.initBackgroundJobs()
	c.initPresentation()

	c.Logger.Info("All dependencies initialized successfully")

	return c, nil
}

// Start runs the live hub, the creation trigger and the digest job until ctx
// is cancelled.
func (c *Container) Start(ctx context.Context) {
	var wg sync.WaitGroup

	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.Logger.Error("background worker stopped", zap.String("worker", name), zap.Error(err))
			}
		}()
	}

	run("live_hub", c.Hub.Run)
	run("notification_trigger", c.Consumer.Listen)
	if c.DigestJob != nil {
		run("notification_digest", c.DigestJob.Start)
	}

	c.Logger.Info("Background workers started")

	<-ctx.Done()
	wg.Wait()

	c.Logger.Info("Background workers stopped")
}

// Close releases connections in reverse order of creation.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) onClose(fn func(ctx context.Context) error) {
	c.closers = append(c.closers, fn)
}
