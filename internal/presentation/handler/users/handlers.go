package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/encore/internal/application/usecases/auth"
	"github.com/hilthontt/encore/internal/application/usecases/participant"
	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/presentation/binding"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type createAdminRequest struct {
	FirstName string `json:"firstName" binding:"required,max=40"`
	LastName  string `json:"lastName" binding:"required,max=40"`
	Pin       string `json:"pin" binding:"required,numeric,min=4,max=8"`
}

type setDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

type Handler struct {
	participants participant.ParticipantUseCase
	auth         auth.AuthUseCase
	logger       *logger.Logger
}

func NewHandler(participants participant.ParticipantUseCase, auth auth.AuthUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		participants: participants,
		auth:         auth,
		logger:       logger,
	}
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	list, err := h.participants.List(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to list participants", zap.Error(err))
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, list)
}

func (h *Handler) CreateAdminHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req createAdminRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	account, err := h.auth.CreateAccount(r.Context(), actor, req.FirstName, req.LastName, req.Pin, domain.RoleAdmin)
	if err != nil {
		if json.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed to create admin account", zap.Error(err))
		}
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusCreated, account)
}

func (h *Handler) SetDisabledHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req setDisabledRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	p, err := h.participants.SetDisabled(r.Context(), actor, chi.URLParam(r, "userId"), *req.Disabled)
	if err != nil {
		if json.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed to update participant", zap.Error(err))
		}
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, p)
}
