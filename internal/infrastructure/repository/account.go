package repository

import (
	"context"
	"strings"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type accountRepository struct {
	*BaseRepository[domain.Account]
}

func NewAccountRepository(db *gorm.DB, log *logger.Logger) domain.AccountRepository {
	return &accountRepository{
		BaseRepository: NewBaseRepository[domain.Account](db, log),
	}
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	account.Email = strings.ToLower(account.Email)

	err := r.database.WithContext(ctx).Create(account).Error
	if database.IsUniqueViolation(err) {
		return domain.ErrAccountExists
	}
	return err
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getByID(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *accountRepository) GetByUID(ctx context.Context, uid string) (*domain.Account, error) {
	return r.getByID(ctx, "uid", uid)
}

func (r *accountRepository) UpdateDisplayName(ctx context.Context, uid, name string) error {
	res := r.database.WithContext(ctx).
		Model(&domain.Account{}).
		Where("uid = ?", uid).
		Update("display_name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
