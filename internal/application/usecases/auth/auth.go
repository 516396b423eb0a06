package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hilthontt/encore/internal/application/usecases/auditlog"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/session"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Result is a freshly issued session.
type Result struct {
	Actor     domain.Actor `json:"actor"`
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type AuthUseCase interface {
	SignUp(ctx context.Context, first, last, pin string) (*Result, error)
	Login(ctx context.Context, first, last, pin string, role domain.Role) (*Result, error)
	Logout(ctx context.Context, actor domain.Actor) error
	// CreateAccount registers a staff account. The system actor may create any
	// role, the owner may create admins.
	CreateAccount(ctx context.Context, creator domain.Actor, first, last, pin string, role domain.Role) (*domain.Account, error)
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

type authUseCase struct {
	accounts     domain.AccountRepository
	participants domain.ParticipantRepository
	sessions     session.Store
	tokens       *session.TokenManager
	audit        auditlog.Recorder
	notifier     ws.Notifier
	logger       *logger.Logger
	cost         int
}

func NewAuthUseCase(
	accounts domain.AccountRepository,
	participants domain.ParticipantRepository,
	sessions session.Store,
	tokens *session.TokenManager,
	audit auditlog.Recorder,
	notifier ws.Notifier,
	logger *logger.Logger,
) AuthUseCase {
	return &authUseCase{
		accounts:     accounts,
		participants: participants,
		sessions:     sessions,
		tokens:       tokens,
		audit:        audit,
		notifier:     notifier,
		logger:       logger,
		cost:         bcrypt.DefaultCost,
	}
}

// bcrypt reads at most 72 bytes, so long name pairs are digested first.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func (uc *authUseCase) SignUp(ctx context.Context, first, last, pin string) (*Result, error) {
	creds, err := domain.NewCredentials(first, last, pin, domain.RoleParticipant)
	if err != nil {
		return nil, err
	}

	account, err := uc.register(ctx, creds)
	if err != nil {
		return nil, err
	}
	actor := account.Actor()

	if err := uc.participants.Upsert(ctx, domain.NewParticipant(actor)); err != nil {
		uc.logger.Error("failed to create participant record", zap.Error(err), zap.String("uid", account.UID))
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	uc.audit.Record(ctx, domain.NewAuditLog(actor, domain.ActionAccountCreated, map[string]any{
		"email": account.Email,
	}))

	return uc.issue(ctx, actor)
}

func (uc *authUseCase) register(ctx context.Context, creds domain.Credentials) (*domain.Account, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(creds.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		UID:          uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		DisplayName:  creds.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return nil, err
		}
		uc.logger.Error("failed to create account", zap.Error(err), zap.String("email", creds.Email))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	uc.logger.Info("account created",
		zap.String("uid", account.UID),
		zap.String("role", string(creds.Role)))

	return account, nil
}

func (uc *authUseCase) Login(ctx context.Context, first, last, pin string, role domain.Role) (*Result, error) {
	creds, err := domain.NewCredentials(first, last, pin, role)
	if err != nil {
		return nil, err
	}

	account, err := uc.accounts.GetByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), passwordDigest(creds.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	actor := account.Actor()
	if err := uc.checkEnabled(ctx, actor); err != nil {
		return nil, err
	}

	return uc.issue(ctx, actor)
}

func (uc *authUseCase) issue(ctx context.Context, actor domain.Actor) (*Result, error) {
	s, token, err := uc.tokens.Issue(actor.UID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Save(ctx, s); err != nil {
		uc.logger.Error("failed to save session", zap.Error(err), zap.String("uid", actor.UID))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	actor.SessionID = s.ID
	uc.logger.Info("session issued", zap.String("uid", actor.UID), zap.String("sessionID", s.ID))

	return &Result{
		Actor:     actor,
		Token:     token,
		ExpiresAt: s.ExpiresAt,
	}, nil
}

func (uc *authUseCase) Logout(ctx context.Context, actor domain.Actor) error {
	if actor.SessionID == "" {
		return domain.ErrUnauthenticated
	}
	if err := uc.sessions.Delete(ctx, actor.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	uc.notifier.TerminateSession(ctx, actor.SessionID)
	return nil
}

func (uc *authUseCase) CreateAccount(ctx context.Context, creator domain.Actor, first, last, pin string, role domain.Role) (*domain.Account, error) {
	switch {
	case creator.UID == domain.SystemActor.UID:
	case creator.Roles.IsOwner && role == domain.RoleAdmin:
	default:
		return nil, domain.ErrForbidden
	}

	creds, err := domain.NewCredentials(first, last, pin, role)
	if err != nil {
		return nil, err
	}

	account, err := uc.register(ctx, creds)
	if err != nil {
		return nil, err
	}

	if err := uc.participants.Upsert(ctx, domain.NewParticipant(account.Actor())); err != nil {
		uc.logger.Error("failed to create participant record", zap.Error(err), zap.String("uid", account.UID))
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	uc.audit.Record(ctx, domain.NewAuditLog(creator, domain.ActionAccountCreated, map[string]any{
		"email": account.Email,
		"uid":   account.UID,
	}))

	return account, nil
}

func (uc *authUseCase) Authenticate(ctx context.Context, token string) (*domain.Actor, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	s, err := uc.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session revoked or expired", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if s.UID != claims.Subject {
		return nil, fmt.Errorf("%w: session does not match token", domain.ErrUnauthenticated)
	}

	account, err := uc.accounts.GetByUID(ctx, s.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	actor := account.Actor()
	if !actor.Roles.Any() {
		return nil, domain.ErrNoRole
	}
	if err := uc.checkEnabled(ctx, actor); err != nil {
		return nil, err
	}

	actor.SessionID = s.ID
	return &actor, nil
}

// checkEnabled denies suspended participants and revokes whatever sessions
// they still hold.
func (uc *authUseCase) checkEnabled(ctx context.Context, actor domain.Actor) error {
	if !actor.Roles.IsParticipant {
		return nil
	}

	p, err := uc.participants.GetByID(ctx, actor.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load participant: %w", err)
	}
	if !p.Disabled {
		return nil
	}

	if revoked, err := uc.sessions.DeleteByUID(ctx, actor.UID); err != nil {
		uc.logger.Error("failed to revoke sessions of disabled participant", zap.Error(err), zap.String("uid", actor.UID))
	} else if len(revoked) > 0 {
		uc.notifier.TerminateUser(ctx, actor.UID)
	}

	return domain.ErrAccountDisabled
}
