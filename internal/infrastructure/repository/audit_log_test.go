package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogAppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewAuditLogRepository(newTestDB(t), logger.NewNop())

	owner := domain.Actor{UID: "o1", Name: "Olga"}
	admin := domain.Actor{UID: "a1", Name: "Adam"}

	base := time.Now().UTC()
	for i, entry := range []*domain.AuditLog{
		domain.NewQueueReorderedLog(admin, []string{"x", "y"}),
		domain.NewAuditLog(owner, domain.ActionParticipantSuspended, map[string]any{"participant_id": "u1"}),
		domain.NewQueueReorderedLog(admin, []string{"y", "x"}),
	} {
		entry.Timestamp = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Append(ctx, entry))
	}

	total, logs, err := repo.List(ctx, filter.PaginationInputWithFilter{
		PaginationInput: filter.PaginationInput{PageNumber: 1, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionQueueReordered, logs[0].Action)
	assert.True(t, logs[0].Timestamp.After(logs[1].Timestamp))

	total, logs, err = repo.List(ctx, filter.PaginationInputWithFilter{
		DynamicFilter: filter.DynamicFilter{Filter: map[string]filter.Filter{
			"ActorID": filter.Equals("a1"),
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, l := range logs {
		assert.Equal(t, "Adam", l.ActorName)
		assert.Equal(t, float64(2), l.Details["count"])
	}
}
