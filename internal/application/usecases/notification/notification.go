package notification

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/hilthontt/encore/internal/application/usecases/auditlog"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type NotificationUseCase interface {
	// HandleRequestCreated is the creation trigger for song requests.
	HandleRequestCreated(ctx context.Context, event messaging.SongRequestCreatedData) error
	List(ctx context.Context, actor domain.Actor, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error)
	// SendDigest mails the unread notifications created in (since, until].
	SendDigest(ctx context.Context, since, until time.Time) (int, error)
}

type notificationUseCase struct {
	repository domain.NotificationRepository
	audit      auditlog.Recorder
	notifier   ws.Notifier
	sender     mail.Sender
	digestTo   string
	logger     *logger.Logger
}

// NewNotificationUseCase wires the trigger. sender may be nil, in which case
// digests are skipped.
func NewNotificationUseCase(
	repository domain.NotificationRepository,
	audit auditlog.Recorder,
	notifier ws.Notifier,
	sender mail.Sender,
	digestTo string,
	logger *logger.Logger,
) NotificationUseCase {
	return &notificationUseCase{
		repository: repository,
		audit:      audit,
		notifier:   notifier,
		sender:     sender,
		digestTo:   digestTo,
		logger:     logger,
	}
}

func (uc *notificationUseCase) HandleRequestCreated(ctx context.Context, event messaging.SongRequestCreatedData) error {
	if event.RequestID == "" {
		return fmt.Errorf("%w: event has no request id", domain.ErrInvalidInput)
	}

	n := domain.NewRequestNotification(event.RequestID, event.RequesterName, event.SongTitle)
	if err := uc.repository.Create(ctx, n); err != nil {
		uc.logger.Error("failed to write notification", zap.Error(err), zap.String("requestID", event.RequestID))
		return fmt.Errorf("failed to write notification: %w", err)
	}

	uc.notifier.Notify(ctx, ws.TableNotifications, n.ID)

	uc.logger.Info("owner notified of new request",
		zap.String("notificationID", n.ID),
		zap.String("requestID", event.RequestID))

	return nil
}

func (uc *notificationUseCase) List(ctx context.Context, actor domain.Actor, unreadOnly bool, limit int) ([]domain.Notification, error) {
	if !actor.Roles.IsOwner {
		return nil, domain.ErrForbidden
	}

	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	items, err := uc.repository.List(ctx, domain.OwnerRecipient, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

func (uc *notificationUseCase) MarkRead(ctx context.Context, actor domain.Actor, id string) (*domain.Notification, error) {
	if !actor.Roles.IsOwner {
		return nil, domain.ErrForbidden
	}

	n, err := uc.repository.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(ctx, domain.NewAuditLog(actor, domain.ActionNotificationRead, map[string]any{
		"notification_id": id,
	}))
	uc.notifier.Notify(ctx, ws.TableNotifications, id)

	return n, nil
}

func (uc *notificationUseCase) SendDigest(ctx context.Context, since, until time.Time) (int, error) {
	if uc.sender == nil || uc.digestTo == "" {
		return 0, nil
	}

	items, err := uc.repository.ListUnreadBetween(ctx, domain.OwnerRecipient, since, until)
	if err != nil {
		return 0, fmt.Errorf("failed to load unread notifications: %w", err)
	}
	if len(items) == 0 {
		return 0, nil
	}

	subject := "1 new song request"
	if len(items) > 1 {
		subject = fmt.Sprintf("%d new song requests", len(items))
	}

	if _, err := uc.sender.Send(ctx, mail.Message{
		To:      []string{uc.digestTo},
		Subject: subject,
		HTML:    digestHTML(items),
	}); err != nil {
		return 0, fmt.Errorf("failed to send digest: %w", err)
	}

	return len(items), nil
}

func digestHTML(items []domain.Notification) string {
	var b strings.Builder
	b.WriteString("<h2>New song requests</h2><ul>")
	for _, n := range items {
		fmt.Fprintf(&b, "<li>%s <small>%s</small></li>",
			html.EscapeString(n.Message),
			n.CreatedAt.UTC().Format(time.Kitchen))
	}
	b.WriteString("</ul>")
	return b.String()
}
