package repository

import (
	"context"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notificationRepository struct {
	*BaseRepository[domain.Notification]
}

func NewNotificationRepository(db *gorm.DB, log *logger.Logger) domain.NotificationRepository {
	return &notificationRepository{
		BaseRepository: NewBaseRepository[domain.Notification](db, log),
	}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.database.WithContext(ctx).Create(n).Error; err != nil {
		r.logger.Error("failed to create notification", zap.Error(err), zap.String("requestID", n.RequestID))
		return err
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, to string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	notifications := []domain.Notification{}

	q := r.database.WithContext(ctx).Where("recipient = ?", to)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	err := q.Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) ListUnreadBetween(ctx context.Context, to string, since, until time.Time) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	err := r.database.WithContext(ctx).
		Where("recipient = ? AND read = ? AND created_at > ? AND created_at <= ?", to, false, since, until).
		Order("created_at ASC").
		Find(&notifications).
		Error
	return notifications, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	res := r.database.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return r.getByID(ctx, "id", id)
}
