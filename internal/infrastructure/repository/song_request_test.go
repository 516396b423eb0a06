package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestSongRequestCreateAssignsIncreasingOrder(t *testing.T) {
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())

	a := seedRequest(t, repo, "u1", "Jane", "first")
	b := seedRequest(t, repo, "u2", "Ann", "second")
	c := seedRequest(t, repo, "u1", "Jane", "third")

	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.Equal(t, 2, c.Order)
}

func TestSongRequestListByRoleQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())

	a := seedRequest(t, repo, "u1", "Jane", "first")
	b := seedRequest(t, repo, "u2", "Ann", "second")
	c := seedRequest(t, repo, "u1", "Jane", "third")
	require.NoError(t, repo.Reorder(ctx, []string{c.ID, a.ID, b.ID}))

	staff, err := domain.QueueQuery(domain.Roles{IsAdmin: true}, "")
	require.NoError(t, err)
	all, err := repo.List(ctx, staff)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(all))

	own, err := domain.QueueQuery(domain.Roles{IsParticipant: true}, "u2")
	require.NoError(t, err)
	mine, err := repo.List(ctx, own)
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, ids(mine))
}

func TestSongRequestReorderPersistsExactSequence(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())

	a := seedRequest(t, repo, "u1", "Jane", "a")
	b := seedRequest(t, repo, "u1", "Jane", "b")
	c := seedRequest(t, repo, "u1", "Jane", "c")

	require.NoError(t, repo.Reorder(ctx, []string{b.ID, c.ID, a.ID}))

	for want, id := range []string{b.ID, c.ID, a.ID} {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Order)
	}
}

func TestSongRequestReorderPartialSequenceMovesRestBehind(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())

	a := seedRequest(t, repo, "u1", "Jane", "a")
	b := seedRequest(t, repo, "u1", "Jane", "b")
	c := seedRequest(t, repo, "u1", "Jane", "c")

	require.NoError(t, repo.Reorder(ctx, []string{c.ID}))

	staff, err := domain.QueueQuery(domain.Roles{IsAdmin: true}, "")
	require.NoError(t, err)
	queue, err := repo.List(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID, a.ID, b.ID}, ids(queue))
	for want, r := range queue {
		assert.Equal(t, want, r.Order)
	}
}

func TestSongRequestReorderUnknownIDRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())

	a := seedRequest(t, repo, "u1", "Jane", "a")
	b := seedRequest(t, repo, "u1", "Jane", "b")

	err := repo.Reorder(ctx, []string{b.ID, a.ID, "missing"})
	require.ErrorIs(t, err, domain.ErrInvalidReorder)

	gotA, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, gotA.Order)
	assert.Equal(t, 1, gotB.Order)
}

func TestSongRequestReorderRejectsDuplicates(t *testing.T) {
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())
	a := seedRequest(t, repo, "u1", "Jane", "a")

	err := repo.Reorder(context.Background(), []string{a.ID, a.ID})
	assert.ErrorIs(t, err, domain.ErrInvalidReorder)
}

func TestSongRequestReorderRollsBackOnWriteFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), database.NewGormConfig(logger.NewNop(), 0))
	require.NoError(t, err)

	update := regexp.QuoteMeta(`UPDATE "song_requests" SET`)
	mock.ExpectBegin()
	mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(update).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	repo := NewSongRequestRepository(db, logger.NewNop())
	err = repo.Reorder(context.Background(), []string{"a", "b", "c"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongRequestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSongRequestRepository(newTestDB(t), logger.NewNop())
	a := seedRequest(t, repo, "u1", "Jane", "a")

	status := domain.StatusApproved
	updated, err := repo.Update(ctx, a.ID, domain.SongRequestPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)
	assert.Equal(t, a.SongTitle, updated.SongTitle)

	_, err = repo.Update(ctx, "missing", domain.SongRequestPatch{Status: &status})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), domain.ErrNotFound)

	_, err = repo.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func ids(requests []domain.SongRequest) []string {
	out := make([]string, len(requests))
	for i, r := range requests {
		out[i] = r.ID
	}
	return out
}
