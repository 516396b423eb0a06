package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hilthontt/encore/internal/infrastructure/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(configs.MailConfig{
		APIKey:  "re_test",
		BaseURL: url,
		From:    "Encore <noreply@encore.test>",
	})
}

func TestSendPostsToProvider(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Send(context.Background(), Message{
		To:      []string{"host@example.com"},
		Subject: "Tonight",
		HTML:    "<p>queue is open</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "msg_123", res.ID)
	assert.Equal(t, "Encore <noreply@encore.test>", got.From)
	assert.Equal(t, []string{"host@example.com"}, got.To)
}

func TestSendSurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Send(context.Background(), Message{
		To: []string{"a@b.c"}, Subject: "s", HTML: "h",
	})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusUnprocessableEntity, perr.Status)
}

func TestSendValidates(t *testing.T) {
	c := newTestClient("http://unused.invalid")

	_, err := c.Send(context.Background(), Message{Subject: "s", HTML: "h"})
	assert.ErrorIs(t, err, ErrInvalidMail)

	_, err = c.Send(context.Background(), Message{To: []string{"nope"}, Subject: "s", HTML: "h"})
	assert.ErrorIs(t, err, ErrInvalidMail)

	_, err = NewClient(configs.MailConfig{}).Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
