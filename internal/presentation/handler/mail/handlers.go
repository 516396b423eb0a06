package mail

import (
	"errors"
	"net/http"

	mailusecase "github.com/hilthontt/encore/internal/application/usecases/mail"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/mail"
	"github.com/hilthontt/encore/internal/presentation/binding"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type Handler struct {
	usecase mailusecase.MailUseCase
	logger  *logger.Logger
}

func NewHandler(usecase mailusecase.MailUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// SendHandler forwards {to, subject, html} to the mail provider and answers
// {ok, result} or {ok: false, error}.
func (h *Handler) SendHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req sendRequest
	if err := json.Read(w, r, &req); err != nil {
		json.Write(w, http.StatusBadRequest, sendResponse{Error: "invalid request body"})
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		json.Write(w, http.StatusBadRequest, sendResponse{Error: binding.TranslateValidationError(err)})
		return
	}

	res, err := h.usecase.Send(r.Context(), actor, mail.Message{
		To:      req.To,
		Subject: req.Subject,
		HTML:    req.HTML,
	})
	if err != nil {
		status, msg := h.failure(err)
		json.Write(w, status, sendResponse{Error: msg})
		return
	}

	json.Write(w, http.StatusOK, sendResponse{OK: true, Result: res})
}

func (h *Handler) failure(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNoRole):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, mail.ErrNotConfigured):
		return http.StatusInternalServerError, err.Error()
	}

	var provider *mail.ProviderError
	if errors.As(err, &provider) {
		return http.StatusInternalServerError, provider.Error()
	}

	h.logger.Error("mail handler failed", zap.Error(err))
	return http.StatusInternalServerError, "failed to send mail"
}
