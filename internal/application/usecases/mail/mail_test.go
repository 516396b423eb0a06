package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	err error
}

func (f *fakeSender) Send(_ context.Context, _ mail.Message) (*mail.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &mail.Result{ID: "m1"}, nil
}

var jane = domain.Actor{UID: "jane", Roles: domain.Roles{IsParticipant: true}}

func validMessage() mail.Message {
	return mail.Message{To: []string{"host@example.com"}, Subject: "Hi", HTML: "<p>hi</p>"}
}

func TestSend(t *testing.T) {
	uc := NewMailUseCase(&fakeSender{}, logger.NewNop())

	res, err := uc.Send(context.Background(), jane, validMessage())
	require.NoError(t, err)
	assert.Equal(t, "m1", res.ID)
}

func TestSendValidation(t *testing.T) {
	uc := NewMailUseCase(&fakeSender{}, logger.NewNop())

	_, err := uc.Send(context.Background(), jane, mail.Message{Subject: "Hi"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Send(context.Background(), domain.Actor{UID: "x"}, validMessage())
	assert.ErrorIs(t, err, domain.ErrNoRole)
}

func TestSendProviderFailure(t *testing.T) {
	uc := NewMailUseCase(&fakeSender{err: errors.New("boom")}, logger.NewNop())

	_, err := uc.Send(context.Background(), jane, validMessage())
	assert.EqualError(t, err, "boom")

	_, err = NewMailUseCase(nil, logger.NewNop()).Send(context.Background(), jane, validMessage())
	assert.ErrorIs(t, err, mail.ErrNotConfigured)
}
