package songrequest

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/encore/internal/application/usecases/auditlog"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"go.uber.org/zap"
)

// CreatedPublisher announces new requests to the notification trigger.
type CreatedPublisher interface {
	PublishCreated(ctx context.Context, r *domain.SongRequest) error
}

type SongRequestUseCase interface {
	Submit(ctx context.Context, actor domain.Actor, title, songURL string) (*domain.SongRequest, error)
	Update(ctx context.Context, actor domain.Actor, id string, patch domain.SongRequestPatch) (*domain.SongRequest, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	// Reorder persists the sequence. On failure it also returns the queue as
	// it is stored, which is unchanged.
	Reorder(ctx context.Context, actor domain.Actor, ids []string) ([]domain.SongRequest, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.SongRequest, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.SongRequest, error)
}

type songRequestUseCase struct {
	requests     domain.SongRequestRepository
	participants domain.ParticipantRepository
	publisher    CreatedPublisher
	audit        auditlog.Recorder
	notifier     ws.Notifier
	logger       *logger.Logger
}

func NewSongRequestUseCase(
	requests domain.SongRequestRepository,
	participants domain.ParticipantRepository,
	publisher CreatedPublisher,
	audit auditlog.Recorder,
	notifier ws.Notifier,
	logger *logger.Logger,
) SongRequestUseCase {
	return &songRequestUseCase{
		requests:     requests,
		participants: participants,
		publisher:    publisher,
		audit:        audit,
		notifier:     notifier,
		logger:       logger,
	}
}

func (uc *songRequestUseCase) Submit(ctx context.Context, actor domain.Actor, title, songURL string) (r *domain.SongRequest, err error) {
	defer func() { metrics.RecordQueueMutation("submit", err) }()

	if !actor.Roles.Any() {
		return nil, domain.ErrNoRole
	}

	r, err = domain.NewSongRequest(actor, title, songURL)
	if err != nil {
		return nil, err
	}

	if err = uc.participants.Upsert(ctx, domain.NewParticipant(actor)); err != nil {
		uc.logger.Error("failed to upsert participant", zap.Error(err), zap.String("uid", actor.UID))
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err = uc.requests.Create(ctx, r); err != nil {
		uc.logger.Error("failed to create song request", zap.Error(err), zap.String("uid", actor.UID))
		return nil, fmt.Errorf("failed to create song request: %w", err)
	}

	uc.audit.Record(ctx, domain.NewRequestCreatedLog(actor, r))
	uc.notifier.Notify(ctx, ws.TableSongRequests, r.ID)

	if perr := uc.publisher.PublishCreated(ctx, r); perr != nil {
		uc.logger.Error("failed to publish song request event", zap.Error(perr), zap.String("requestID", r.ID))
	}

	uc.logger.Info("song request submitted",
		zap.String("requestID", r.ID),
		zap.String("uid", actor.UID),
		zap.Int("order", r.Order))

	return r, nil
}

func (uc *songRequestUseCase) Update(ctx context.Context, actor domain.Actor, id string, patch domain.SongRequestPatch) (r *domain.SongRequest, err error) {
	defer func() { metrics.RecordQueueMutation("update", err) }()

	if err = patch.Normalize(); err != nil {
		return nil, err
	}

	existing, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() {
		switch {
		case !existing.OwnedBy(actor.UID):
			return nil, domain.ErrForbidden
		case patch.TouchesStaffFields():
			return nil, fmt.Errorf("%w: only staff may change status or order", domain.ErrForbidden)
		case existing.Status.Resolved():
			return nil, domain.ErrRequestResolved
		}
	}

	r, err = uc.requests.Update(ctx, id, patch)
	if err != nil {
		uc.logger.Error("failed to update song request", zap.Error(err), zap.String("requestID", id))
		return nil, err
	}

	uc.audit.Record(ctx, domain.NewRequestUpdatedLog(actor, id, patch))
	uc.notifier.Notify(ctx, ws.TableSongRequests, id)

	return r, nil
}

func (uc *songRequestUseCase) Delete(ctx context.Context, actor domain.Actor, id string) (err error) {
	defer func() { metrics.RecordQueueMutation("delete", err) }()

	if !actor.IsStaff() {
		return domain.ErrForbidden
	}

	existing, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err = uc.requests.Delete(ctx, id); err != nil {
		uc.logger.Error("failed to delete song request", zap.Error(err), zap.String("requestID", id))
		return err
	}

	uc.audit.Record(ctx, domain.NewRequestDeletedLog(actor, existing))
	uc.notifier.Notify(ctx, ws.TableSongRequests, id)

	return nil
}

func (uc *songRequestUseCase) Reorder(ctx context.Context, actor domain.Actor, ids []string) (queue []domain.SongRequest, err error) {
	defer func() { metrics.RecordQueueMutation("reorder", err) }()

	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}

	if err = domain.ValidateReorder(ids); err == nil {
		err = uc.requests.Reorder(ctx, ids)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidReorder) {
			uc.logger.Error("failed to reorder queue", zap.Error(err), zap.Int("count", len(ids)))
		}
		snapshot, lerr := uc.List(ctx, actor)
		if lerr != nil {
			uc.logger.Error("failed to load queue after reorder failure", zap.Error(lerr))
		}
		return snapshot, err
	}

	uc.audit.Record(ctx, domain.NewQueueReorderedLog(actor, ids))
	uc.notifier.Notify(ctx, ws.TableSongRequests, "")

	uc.logger.Info("queue reordered", zap.String("uid", actor.UID), zap.Int("count", len(ids)))

	return uc.List(ctx, actor)
}

func (uc *songRequestUseCase) List(ctx context.Context, actor domain.Actor) ([]domain.SongRequest, error) {
	query, err := domain.QueueQuery(actor.Roles, actor.UID)
	if err != nil {
		return nil, err
	}

	requests, err := uc.requests.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list song requests: %w", err)
	}
	if requests == nil {
		requests = []domain.SongRequest{}
	}
	return requests, nil
}

func (uc *songRequestUseCase) Get(ctx context.Context, actor domain.Actor, id string) (*domain.SongRequest, error) {
	if !actor.Roles.Any() {
		return nil, domain.ErrNoRole
	}

	r, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && !r.OwnedBy(actor.UID) {
		return nil, domain.ErrForbidden
	}
	return r, nil
}
