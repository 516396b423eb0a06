package repository

import (
	"context"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type participantRepository struct {
	*BaseRepository[domain.Participant]
}

func NewParticipantRepository(db *gorm.DB, log *logger.Logger) domain.ParticipantRepository {
	return &participantRepository{
		BaseRepository: NewBaseRepository[domain.Participant](db, log),
	}
}

func (r *participantRepository) Upsert(ctx context.Context, participant *domain.Participant) error {
	err := r.database.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(participant).
		Error
	if err != nil {
		r.logger.Error("failed to upsert participant", zap.Error(err), zap.String("participantID", participant.ID))
		return err
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	return r.getByID(ctx, "id", id)
}

func (r *participantRepository) List(ctx context.Context) ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.database.WithContext(ctx).
		Order("name ASC").
		Find(&participants).
		Error
	return participants, err
}

func (r *participantRepository) SetDisabled(ctx context.Context, id string, disabled bool) (*domain.Participant, error) {
	res := r.database.WithContext(ctx).
		Model(&domain.Participant{}).
		Where("id = ?", id).
		Update("disabled", disabled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *participantRepository) RenameWithRequests(ctx context.Context, id, name string) (int64, error) {
	var renamed int64

	err := database.WithRetry(ctx, r.database, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Participant{}).
			Where("id = ?", id).
			Update("name", name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		res = tx.Model(&domain.SongRequest{}).
			Where("participant_id = ?", id).
			Update("requester_name", name)
		if res.Error != nil {
			return res.Error
		}
		renamed = res.RowsAffected
		return nil
	})
	if err != nil {
		r.logger.Error("failed to rename participant", zap.Error(err), zap.String("participantID", id))
		return 0, err
	}

	return renamed, nil
}
