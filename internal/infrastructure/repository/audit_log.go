package repository

import (
	"context"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresAuditLogRepository struct {
	*BaseRepository[domain.AuditLog]
}

func NewAuditLogRepository(db *gorm.DB, log *logger.Logger) domain.AuditLogRepository {
	return &PostgresAuditLogRepository{
		BaseRepository: NewBaseRepository[domain.AuditLog](db, log),
	}
}

func (r *PostgresAuditLogRepository) Append(ctx context.Context, a *domain.AuditLog) error {
	result := r.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(a)

	if result.Error != nil {
		r.logger.Error("failed to append audit log", zap.Error(result.Error), zap.String("action", string(a.Action)))
		return result.Error
	}

	return nil
}

func (r *PostgresAuditLogRepository) List(ctx context.Context, req filter.PaginationInputWithFilter) (int64, []domain.AuditLog, error) {
	if !req.HasSort() {
		req.Sort = []filter.Sort{{ColID: "Timestamp", Sort: filter.SortDesc}}
	}
	return r.getByFilter(ctx, req)
}
