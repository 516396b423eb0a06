package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.NewGormConfig(logger.NewNop(), 0))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func seedRequest(t *testing.T, repo domain.SongRequestRepository, uid, name, title string) *domain.SongRequest {
	t.Helper()

	r, err := domain.NewSongRequest(domain.Actor{UID: uid, Name: name}, title, "https://example.com/"+title)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), r))
	return r
}

func seedParticipant(t *testing.T, repo domain.ParticipantRepository, id, name string, role domain.ParticipantRole) {
	t.Helper()

	require.NoError(t, repo.Upsert(context.Background(), &domain.Participant{
		ID:        id,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}))
}
