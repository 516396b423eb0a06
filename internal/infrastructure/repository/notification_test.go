package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(newTestDB(t), logger.NewNop())

	before := time.Now().UTC().Add(-time.Minute)

	first := domain.NewRequestNotification("r1", "Jane", "A")
	second := domain.NewRequestNotification("r2", "Ann", "B")
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.List(ctx, domain.OwnerRecipient, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)

	read, err := repo.MarkRead(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, read.Read)

	unread, err := repo.List(ctx, domain.OwnerRecipient, true, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second.ID, unread[0].ID)

	window, err := repo.ListUnreadBetween(ctx, domain.OwnerRecipient, before, second.CreatedAt)
	require.NoError(t, err)
	assert.Len(t, window, 1)

	window, err = repo.ListUnreadBetween(ctx, domain.OwnerRecipient, before, first.CreatedAt)
	require.NoError(t, err)
	assert.Empty(t, window)

	_, err = repo.MarkRead(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
