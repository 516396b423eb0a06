package users

import (
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/encore/internal/application/usecases/auth"
	"github.com/hilthontt/encore/internal/application/usecases/participant"
	"github.com/hilthontt/encore/internal/application/usecases/usecasetest"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/session"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = domain.Actor{UID: "owner-1", Name: "Olive Host", Roles: domain.Roles{IsOwner: true}}
	admin = domain.Actor{UID: "admin-1", Name: "Adam Min", Roles: domain.Roles{IsAdmin: true}}
	jane  = domain.Actor{UID: "jane-1", Name: "Jane Doe", Roles: domain.Roles{IsParticipant: true}}
)

type fixture struct {
	participants *usecasetest.Participants
	sessions     *session.MemoryStore
	notifier     *usecasetest.Notifier
}

func newRouter(t *testing.T, actor domain.Actor) (http.Handler, *fixture) {
	t.Helper()

	f := &fixture{
		participants: usecasetest.NewParticipants(),
		sessions:     session.NewMemoryStore(),
		notifier:     &usecasetest.Notifier{},
	}
	accounts := usecasetest.NewAccounts()
	audit := &usecasetest.Audit{}

	participantUC := participant.NewParticipantUseCase(f.participants, accounts, f.sessions, audit, f.notifier, logger.NewNop())
	authUC := auth.NewAuthUseCase(accounts, f.participants, f.sessions,
		session.NewTokenManager("users-test-secret", "encore", time.Hour), audit, f.notifier, logger.NewNop())
	h := NewHandler(participantUC, authUC, logger.NewNop())

	for _, a := range []domain.Actor{owner, admin, jane} {
		require.NoError(t, f.participants.Upsert(context.Background(), domain.NewParticipant(a)))
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middlewares.WithActor(req.Context(), actor)))
		})
	})
	r.Get("/users", h.ListHandler)
	r.Post("/users", h.CreateAdminHandler)
	r.Patch("/users/{userId}/disabled", h.SetDisabledHandler)

	return r, f
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListHandler(t *testing.T) {
	h, _ := newRouter(t, owner)

	rec := do(h, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list []domain.Participant
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	h, _ = newRouter(t, admin)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodGet, "/users", "").Code)
}

func TestSetDisabledHandlerSuspendsParticipant(t *testing.T) {
	h, f := newRouter(t, owner)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, f.sessions.Save(ctx, session.Session{ID: "s1", UID: jane.UID, CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))

	rec := do(h, http.MethodPatch, "/users/"+jane.UID+"/disabled", `{"disabled":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var p domain.Participant
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &p))
	assert.True(t, p.Disabled)
	assert.Equal(t, []string{jane.UID}, f.notifier.Terminated)

	_, err := f.sessions.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSetDisabledHandlerStatuses(t *testing.T) {
	tests := []struct {
		name   string
		actor  domain.Actor
		path   string
		body   string
		status int
	}{
		{"admin cannot suspend", admin, "/users/" + jane.UID + "/disabled", `{"disabled":true}`, http.StatusForbidden},
		{"staff cannot be suspended", owner, "/users/" + admin.UID + "/disabled", `{"disabled":true}`, http.StatusForbidden},
		{"unknown participant", owner, "/users/ghost/disabled", `{"disabled":true}`, http.StatusNotFound},
		{"missing flag", owner, "/users/" + jane.UID + "/disabled", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, f := newRouter(t, tt.actor)

			rec := do(h, http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Empty(t, f.notifier.Terminated)
		})
	}
}

func TestCreateAdminHandler(t *testing.T) {
	h, _ := newRouter(t, owner)
	body := `{"firstName":"Ada","lastName":"Lovelace","pin":"1234"}`

	rec := do(h, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var account domain.Account
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "ada.lovelace@karaoke.admin.app", account.Email)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, "/users", body).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/users", `{"firstName":"Ada","lastName":"Lovelace","pin":"12"}`).Code)

	h, _ = newRouter(t, admin)
	assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/users", body).Code)
}
