package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/application/usecases/usecasetest"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) (*mail.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &mail.Result{ID: "m1"}, nil
}

var owner = domain.Actor{UID: "o1", Name: "Olive", Roles: domain.Roles{IsOwner: true}}

func TestHandleRequestCreatedWritesOwnerNotification(t *testing.T) {
	repo := usecasetest.NewNotifications()
	notifier := &usecasetest.Notifier{}
	uc := NewNotificationUseCase(repo, &usecasetest.Audit{}, notifier, nil, "", logger.NewNop())
	ctx := context.Background()

	err := uc.HandleRequestCreated(ctx, messaging.SongRequestCreatedData{
		RequestID:     "r1",
		RequesterName: "Jane",
		SongTitle:     "Valerie",
	})
	require.NoError(t, err)

	items, err := uc.List(ctx, owner, true, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.OwnerRecipient, items[0].To)
	assert.Equal(t, domain.NotificationNewRequest, items[0].Type)
	assert.Equal(t, `Jane requested "Valerie"`, items[0].Message)
	assert.Equal(t, "r1", items[0].RequestID)
	assert.False(t, items[0].Read)
	assert.Len(t, notifier.Changes, 1)

	assert.Error(t, uc.HandleRequestCreated(ctx, messaging.SongRequestCreatedData{}))
}

func TestMarkReadIsOwnerOnly(t *testing.T) {
	repo := usecasetest.NewNotifications()
	audit := &usecasetest.Audit{}
	uc := NewNotificationUseCase(repo, audit, &usecasetest.Notifier{}, nil, "", logger.NewNop())
	ctx := context.Background()
	require.NoError(t, uc.HandleRequestCreated(ctx, messaging.SongRequestCreatedData{RequestID: "r1", RequesterName: "Jane", SongTitle: "A"}))

	items, err := uc.List(ctx, owner, true, 10)
	require.NoError(t, err)
	id := items[0].ID

	_, err = uc.MarkRead(ctx, domain.Actor{Roles: domain.Roles{IsAdmin: true}}, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	n, err := uc.MarkRead(ctx, owner, id)
	require.NoError(t, err)
	assert.True(t, n.Read)

	unread, err := uc.List(ctx, owner, true, 10)
	require.NoError(t, err)
	assert.Empty(t, unread)
	assert.Equal(t, []domain.AuditAction{domain.ActionNotificationRead}, audit.Actions())

	_, err = uc.MarkRead(ctx, owner, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSendDigest(t *testing.T) {
	repo := usecasetest.NewNotifications()
	sender := &fakeSender{}
	uc := NewNotificationUseCase(repo, &usecasetest.Audit{}, &usecasetest.Notifier{}, sender, "host@example.com", logger.NewNop())
	ctx := context.Background()
	since := time.Now().Add(-time.Minute)

	n, err := uc.SendDigest(ctx, since, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, sender.sent)

	require.NoError(t, uc.HandleRequestCreated(ctx, messaging.SongRequestCreatedData{RequestID: "r1", RequesterName: "Jane", SongTitle: "<Valerie>"}))
	require.NoError(t, uc.HandleRequestCreated(ctx, messaging.SongRequestCreatedData{RequestID: "r2", RequesterName: "Bob", SongTitle: "Jolene"}))

	until := time.Now().Add(time.Minute)
	n, err = uc.SendDigest(ctx, since, until)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "2 new song requests", sender.sent[0].Subject)
	assert.Equal(t, []string{"host@example.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "&lt;Valerie&gt;")

	n, err = uc.SendDigest(ctx, until, until.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	require.Len(t, sender.sent, 1)

	sender.err = errors.New("provider down")
	_, err = uc.SendDigest(ctx, since, until)
	assert.Error(t, err)
}

func TestSendDigestSkippedWithoutMail(t *testing.T) {
	uc := NewNotificationUseCase(usecasetest.NewNotifications(), &usecasetest.Audit{}, &usecasetest.Notifier{}, nil, "", logger.NewNop())

	n, err := uc.SendDigest(context.Background(), time.Time{}, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}
