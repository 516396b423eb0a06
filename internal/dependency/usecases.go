package dependency

import (
	auditLogUseCase "github.com/hilthontt/encore/internal/application/usecases/auditlog"
	authUseCase "github.com/hilthontt/encore/internal/application/usecases/auth"
	mailUseCase "github.com/hilthontt/encore/internal/application/usecases/mail"
	notificationUseCase "github.com/hilthontt/encore/internal/application/usecases/notification"
	participantUseCase "github.com/hilthontt/encore/internal/application/usecases/participant"
	songRequestUseCase "github.com/hilthontt/encore/internal/application/usecases/songrequest"
	"github.com/hilthontt/encore/internal/infrastructure/events"
	"github.com/hilthontt/encore/internal/infrastructure/jobs"
)

func (c *Container) initUseCases() {
	log := c.Logger

	c.AuditLogUC = auditLogUseCase.NewAuditLogUseCase(c.AuditLogRepo, log.Named("audit"))

	c.AuthUC = authUseCase.NewAuthUseCase(
		c.AccountRepo,
		c.ParticipantRepo,
		c.Sessions,
		c.Tokens,
		c.AuditLogUC,
		c.Hub,
		log.Named("auth"),
	)

	c.SongRequestUC = songRequestUseCase.NewSongRequestUseCase(
		c.SongRequestRepo,
		c.ParticipantRepo,
		events.NewSongRequestPublisher(c.Bus),
		c.AuditLogUC,
		c.Hub,
		log.Named("requests"),
	)

	c.ParticipantUC = participantUseCase.NewParticipantUseCase(
		c.ParticipantRepo,
		c.AccountRepo,
		c.Sessions,
		c.AuditLogUC,
		c.Hub,
		log.Named("participants"),
	)

	c.NotificationUC = notificationUseCase.NewNotificationUseCase(
		c.NotificationRepo,
		c.AuditLogUC,
		c.Hub,
		c.Mailer,
		c.Config.Mail.DigestTo,
		log.Named("notifications"),
	)

	c.MailUC = mailUseCase.NewMailUseCase(c.Mailer, log.Named("mail"))
}

func (c *Container) initBackgroundJobs() {
	c.Consumer = events.NewNotificationConsumer(c.Bus, c.NotificationUC, c.Logger)

	if c.Mailer != nil && c.Config.Mail.DigestTo != "" {
		c.DigestJob = jobs.NewDigestJob(c.NotificationUC, c.Config.Mail.DigestSchedule, c.Logger.Named("jobs"))
	}
}
