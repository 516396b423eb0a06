package participant

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/encore/internal/application/usecases/auditlog"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/session"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"go.uber.org/zap"
)

// Profile is what a caller sees about themselves.
type Profile struct {
	Account     domain.Actor        `json:"account"`
	Participant *domain.Participant `json:"participant,omitempty"`
}

type ParticipantUseCase interface {
	// Rename changes the display name and every request the caller owns. If
	// the request update fails the display name is restored.
	Rename(ctx context.Context, actor domain.Actor, name string) (*domain.Participant, error)
	SetDisabled(ctx context.Context, actor domain.Actor, id string, disabled bool) (*domain.Participant, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Participant, error)
	Me(ctx context.Context, actor domain.Actor) (*Profile, error)
}

type participantUseCase struct {
	participants domain.ParticipantRepository
	accounts     domain.AccountRepository
	sessions     session.Store
	audit        auditlog.Recorder
	notifier     ws.Notifier
	logger       *logger.Logger
}

func NewParticipantUseCase(
	participants domain.ParticipantRepository,
	accounts domain.AccountRepository,
	sessions session.Store,
	audit auditlog.Recorder,
	notifier ws.Notifier,
	logger *logger.Logger,
) ParticipantUseCase {
	return &participantUseCase{
		participants: participants,
		accounts:     accounts,
		sessions:     sessions,
		audit:        audit,
		notifier:     notifier,
		logger:       logger,
	}
}

func (uc *participantUseCase) Rename(ctx context.Context, actor domain.Actor, name string) (*domain.Participant, error) {
	if !actor.Roles.Any() {
		return nil, domain.ErrNoRole
	}

	name, err := domain.NormalizeParticipantName(name)
	if err != nil {
		return nil, err
	}

	account, err := uc.accounts.GetByUID(ctx, actor.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	oldName := account.DisplayName

	if err := uc.participants.Upsert(ctx, domain.NewParticipant(account.Actor())); err != nil {
		return nil, fmt.Errorf("failed to register participant: %w", err)
	}

	if err := uc.accounts.UpdateDisplayName(ctx, actor.UID, name); err != nil {
		uc.logger.Error("failed to update display name", zap.Error(err), zap.String("uid", actor.UID))
		return nil, fmt.Errorf("failed to update display name: %w", err)
	}

	renamed, err := uc.participants.RenameWithRequests(ctx, actor.UID, name)
	if err != nil {
		if rerr := uc.accounts.UpdateDisplayName(ctx, actor.UID, oldName); rerr != nil {
			uc.logger.Error("failed to restore display name after rename failure",
				zap.Error(rerr),
				zap.String("uid", actor.UID),
				zap.String("displayName", oldName))
		}
		return nil, fmt.Errorf("failed to rename participant: %w", err)
	}

	uc.audit.Record(ctx, domain.NewParticipantRenamedLog(actor, oldName, name, renamed))
	uc.notifier.Notify(ctx, ws.TableParticipants, actor.UID)
	uc.notifier.Notify(ctx, ws.TableSongRequests, "")

	uc.logger.Info("participant renamed",
		zap.String("uid", actor.UID),
		zap.Int64("requests", renamed))

	return uc.participants.GetByID(ctx, actor.UID)
}

func (uc *participantUseCase) SetDisabled(ctx context.Context, actor domain.Actor, id string, disabled bool) (*domain.Participant, error) {
	if !actor.Roles.IsOwner {
		return nil, domain.ErrForbidden
	}

	p, err := uc.participants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Role != domain.ParticipantStudent {
		return nil, fmt.Errorf("%w: only participants can be suspended", domain.ErrForbidden)
	}

	p, err = uc.participants.SetDisabled(ctx, id, disabled)
	if err != nil {
		uc.logger.Error("failed to update participant", zap.Error(err), zap.String("participantID", id))
		return nil, err
	}

	if disabled {
		revoked, err := uc.sessions.DeleteByUID(ctx, id)
		if err != nil {
			uc.logger.Error("failed to revoke sessions", zap.Error(err), zap.String("participantID", id))
		}
		uc.notifier.TerminateUser(ctx, id)
		uc.logger.Info("participant suspended",
			zap.String("participantID", id),
			zap.Int("sessions", len(revoked)))
	}

	uc.audit.Record(ctx, domain.NewParticipantDisabledLog(actor, p))
	uc.notifier.Notify(ctx, ws.TableParticipants, id)

	return p, nil
}

func (uc *participantUseCase) List(ctx context.Context, actor domain.Actor) ([]domain.Participant, error) {
	if !actor.Roles.IsOwner {
		return nil, domain.ErrForbidden
	}
	participants, err := uc.participants.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if participants == nil {
		participants = []domain.Participant{}
	}
	return participants, nil
}

func (uc *participantUseCase) Me(ctx context.Context, actor domain.Actor) (*Profile, error) {
	profile := &Profile{Account: actor}

	p, err := uc.participants.GetByID(ctx, actor.UID)
	switch {
	case err == nil:
		profile.Participant = p
	case errors.Is(err, domain.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}

	return profile, nil
}
