package auditlog

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Recorder appends audit entries. Failures are logged, never returned, so a
// mutation that already happened is not reported as failed.
type Recorder interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}

type AuditLogUseCase interface {
	Recorder
	List(ctx context.Context, actor domain.Actor, req filter.PaginationInputWithFilter) (*filter.PagedList[domain.AuditLog], error)
}

type auditLogUseCase struct {
	repository domain.AuditLogRepository
	logger     *logger.Logger
}

func NewAuditLogUseCase(repository domain.AuditLogRepository, logger *logger.Logger) AuditLogUseCase {
	return &auditLogUseCase{
		repository: repository,
		logger:     logger,
	}
}

func (uc *auditLogUseCase) Record(ctx context.Context, entry *domain.AuditLog) {
	if err := uc.repository.Append(ctx, entry); err != nil {
		uc.logger.Error("failed to append audit log",
			zap.Error(err),
			zap.String("action", string(entry.Action)),
			zap.String("actorID", entry.ActorID),
		)
	}
}

var allowedFilters = mapset.NewSet("Action", "ActorID", "Timestamp")

func (uc *auditLogUseCase) List(ctx context.Context, actor domain.Actor, req filter.PaginationInputWithFilter) (*filter.PagedList[domain.AuditLog], error) {
	if !actor.Roles.IsOwner {
		return nil, domain.ErrForbidden
	}
	for key, f := range req.Filter {
		if !allowedFilters.Contains(key) {
			return nil, fmt.Errorf("%w: cannot filter audit logs by %s", domain.ErrInvalidInput, key)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
	}

	total, items, err := uc.repository.List(ctx, req)
	if err != nil {
		uc.logger.Error("failed to list audit logs", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return filter.NewPagedList(items, total, req.PaginationInput), nil
}
