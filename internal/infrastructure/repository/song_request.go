package repository

import (
	"context"
	"fmt"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type songRequestRepository struct {
	*BaseRepository[domain.SongRequest]
}

func NewSongRequestRepository(db *gorm.DB, log *logger.Logger) domain.SongRequestRepository {
	return &songRequestRepository{
		BaseRepository: NewBaseRepository[domain.SongRequest](db, log),
	}
}

func (r *songRequestRepository) Create(ctx context.Context, request *domain.SongRequest) error {
	return r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&domain.SongRequest{}).
			Select("COALESCE(MAX(queue_order), -1) + 1").
			Scan(&next).
			Error
		if err != nil {
			return fmt.Errorf("failed to compute queue order: %w", err)
		}

		request.Order = next
		if err := tx.Create(request).Error; err != nil {
			r.logger.Error("failed to create song request", zap.Error(err), zap.String("requestID", request.ID))
			return err
		}
		return nil
	})
}

func (r *songRequestRepository) GetByID(ctx context.Context, id string) (*domain.SongRequest, error) {
	return r.getByID(ctx, "id", id)
}

func (r *songRequestRepository) List(ctx context.Context, f filter.DynamicFilter) ([]domain.SongRequest, error) {
	return r.find(ctx, &f)
}

func (r *songRequestRepository) Update(ctx context.Context, id string, patch domain.SongRequestPatch) (*domain.SongRequest, error) {
	res := r.database.WithContext(ctx).
		Model(&domain.SongRequest{}).
		Where("id = ?", id).
		Updates(patch.Columns())
	if res.Error != nil {
		r.logger.Error("failed to update song request", zap.Error(res.Error), zap.String("requestID", id))
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *songRequestRepository) Delete(ctx context.Context, id string) error {
	res := r.database.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.SongRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reorder writes order = index for each id and moves every unlisted request
// behind the sequence. An unknown id aborts the batch.
func (r *songRequestRepository) Reorder(ctx context.Context, ids []string) error {
	if err := domain.ValidateReorder(ids); err != nil {
		return err
	}

	return r.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			res := tx.Model(&domain.SongRequest{}).
				Where("id = ?", id).
				Update("queue_order", i)
			if res.Error != nil {
				return fmt.Errorf("failed to set order of %s: %w", id, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: unknown id %s", domain.ErrInvalidReorder, id)
			}
		}

		var rest []string
		err := tx.Model(&domain.SongRequest{}).
			Where("id NOT IN ?", ids).
			Order("queue_order ASC, submitted_at ASC").
			Pluck("id", &rest).
			Error
		if err != nil {
			return fmt.Errorf("failed to load unlisted requests: %w", err)
		}

		for i, id := range rest {
			err := tx.Model(&domain.SongRequest{}).
				Where("id = ?", id).
				Update("queue_order", len(ids)+i).
				Error
			if err != nil {
				return fmt.Errorf("failed to set order of %s: %w", id, err)
			}
		}
		return nil
	})
}
