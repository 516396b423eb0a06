package session

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, "encore", time.Hour)

	s, token, err := m.Issue("u1")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, claims.ID)
	assert.Equal(t, "u1", claims.Subject)
}

func TestTokenRejected(t *testing.T) {
	m := NewTokenManager(testSecret, "encore", time.Hour)
	_, token, err := m.Issue("u1")
	require.NoError(t, err)

	other := NewTokenManager("another-secret-another-secret-xx", "encore", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	wrongIssuer := NewTokenManager(testSecret, "someone-else", time.Hour)
	_, err = wrongIssuer.Parse(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = m.Parse("")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	expired := NewTokenManager(testSecret, "encore", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	_, stale, err := expired.Issue("u1")
	require.NoError(t, err)
	_, err = m.Parse(stale)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.Save(ctx, Session{ID: "s1", UID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, Session{ID: "s2", UID: "u1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, Session{ID: "s3", UID: "u2", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, Session{ID: "old", UID: "u2", ExpiresAt: now.Add(-time.Minute)}))

	s, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UID)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	ids, err := store.DeleteByUID(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, ids)

	_, err = store.Get(ctx, "s2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "s3"))
	_, err = store.Get(ctx, "s3")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
