package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"go.uber.org/zap"
)

type MailUseCase interface {
	Send(ctx context.Context, actor domain.Actor, msg mail.Message) (*mail.Result, error)
}

type mailUseCase struct {
	sender mail.Sender
	logger *logger.Logger
}

func NewMailUseCase(sender mail.Sender, logger *logger.Logger) MailUseCase {
	return &mailUseCase{
		sender: sender,
		logger: logger,
	}
}

func (uc *mailUseCase) Send(ctx context.Context, actor domain.Actor, msg mail.Message) (*mail.Result, error) {
	if !actor.Roles.Any() {
		return nil, domain.ErrNoRole
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if uc.sender == nil {
		return nil, mail.ErrNotConfigured
	}

	res, err := uc.sender.Send(ctx, msg)
	if err != nil {
		if errors.Is(err, mail.ErrInvalidMail) {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		uc.logger.Error("failed to send mail",
			zap.Error(err),
			zap.String("uid", actor.UID),
			zap.Int("recipients", len(msg.To)))
		return nil, err
	}

	uc.logger.Info("mail sent",
		zap.String("uid", actor.UID),
		zap.String("messageID", res.ID),
		zap.Int("recipients", len(msg.To)))

	return res, nil
}
