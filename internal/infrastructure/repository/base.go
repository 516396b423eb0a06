package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/database"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type BaseRepository[TEntity any] struct {
	database *gorm.DB
	logger   *logger.Logger
}

func NewBaseRepository[TEntity any](db *gorm.DB, log *logger.Logger) *BaseRepository[TEntity] {
	return &BaseRepository[TEntity]{
		database: db,
		logger:   log,
	}
}

func (r BaseRepository[TEntity]) getByID(ctx context.Context, column, id string) (*TEntity, error) {
	model := new(TEntity)

	err := r.database.WithContext(ctx).
		Where(column+" = ?", id).
		First(model).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return model, nil
}

func (r BaseRepository[TEntity]) find(ctx context.Context, f *filter.DynamicFilter) ([]TEntity, error) {
	items := []TEntity{}

	db := database.ApplyDynamicFilter[TEntity](r.database.WithContext(ctx), f)
	if err := db.Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (r BaseRepository[TEntity]) getByFilter(ctx context.Context, req filter.PaginationInputWithFilter) (int64, []TEntity, error) {
	model := new(TEntity)
	items := []TEntity{}
	var totalRows int64

	db := r.database.WithContext(ctx)
	where, args := database.GenerateDynamicQuery[TEntity](&req.DynamicFilter, db.Dialector.Name())
	sort := database.GenerateDynamicSort[TEntity](&req.DynamicFilter)

	countQuery := db.Model(model)
	if where != "" {
		countQuery = countQuery.Where(where, args...)
	}
	if err := countQuery.Count(&totalRows).Error; err != nil {
		r.logger.Error("failed to count rows", zap.Error(err))
		return 0, nil, fmt.Errorf("failed to count rows: %w", err)
	}

	query := db.Model(model)
	if where != "" {
		query = query.Where(where, args...)
	}
	if sort != "" {
		query = query.Order(sort)
	}

	err := query.
		Offset(req.GetOffset()).
		Limit(req.GetPageSize()).
		Find(&items).
		Error
	if err != nil {
		return 0, nil, err
	}

	return totalRows, items, nil
}
