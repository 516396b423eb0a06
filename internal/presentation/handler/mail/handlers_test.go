package mail

import (
	"context"
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mailusecase "github.com/hilthontt/encore/internal/application/usecases/mail"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	got []mail.Message
	err error
}

func (s *stubSender) Send(_ context.Context, msg mail.Message) (*mail.Result, error) {
	s.got = append(s.got, msg)
	if s.err != nil {
		return nil, s.err
	}
	return &mail.Result{ID: "msg-1"}, nil
}

var jane = domain.Actor{UID: "jane-1", Roles: domain.Roles{IsParticipant: true}}

func send(t *testing.T, sender mail.Sender, actor domain.Actor, body string) (int, sendResponse) {
	t.Helper()

	h := NewHandler(mailusecase.NewMailUseCase(sender, logger.NewNop()), logger.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/api/mail", strings.NewReader(body))
	req = req.WithContext(middlewares.WithActor(req.Context(), actor))
	rec := httptest.NewRecorder()
	h.SendHandler(rec, req)

	var resp sendResponse
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestSendHandler(t *testing.T) {
	sender := &stubSender{}

	status, resp := send(t, sender, jane, `{"to":"dj@example.com","subject":"Tonight","html":"<p>hi</p>"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.OK)
	require.Len(t, sender.got, 1)
	assert.Equal(t, []string{"dj@example.com"}, sender.got[0].To)
}

func TestSendHandlerAcceptsRecipientList(t *testing.T) {
	sender := &stubSender{}

	status, _ := send(t, sender, jane, `{"to":["a@example.com","b@example.com"],"subject":"s","html":"h"}`)

	assert.Equal(t, http.StatusOK, status)
	require.Len(t, sender.got, 1)
	assert.Len(t, sender.got[0].To, 2)
}

func TestSendHandlerFailures(t *testing.T) {
	tests := []struct {
		name   string
		sender mail.Sender
		actor  domain.Actor
		body   string
		status int
	}{
		{"missing subject", &stubSender{}, jane, `{"to":"a@example.com","html":"h"}`, http.StatusBadRequest},
		{"bad recipient", &stubSender{}, jane, `{"to":"nobody","subject":"s","html":"h"}`, http.StatusBadRequest},
		{"malformed body", &stubSender{}, jane, `{"to":`, http.StatusBadRequest},
		{"no role", &stubSender{}, domain.Actor{UID: "x"}, `{"to":"a@example.com","subject":"s","html":"h"}`, http.StatusForbidden},
		{"provider error", &stubSender{err: &mail.ProviderError{Status: 422, Body: "bad"}}, jane, `{"to":"a@example.com","subject":"s","html":"h"}`, http.StatusInternalServerError},
		{"transport error", &stubSender{err: errors.New("dial tcp: refused")}, jane, `{"to":"a@example.com","subject":"s","html":"h"}`, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := send(t, tt.sender, tt.actor, tt.body)
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.OK)
			assert.NotEmpty(t, resp.Error)
		})
	}
}
