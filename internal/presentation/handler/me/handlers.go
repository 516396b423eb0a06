package me

import (
	"net/http"

	"github.com/hilthontt/encore/internal/application/usecases/participant"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/presentation/binding"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type renameRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

type Handler struct {
	usecase participant.ParticipantUseCase
	logger  *logger.Logger
}

func NewHandler(usecase participant.ParticipantUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *Handler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	profile, err := h.usecase.Me(r.Context(), actor)
	if err != nil {
		h.logger.Error("failed to load profile", zap.Error(err), zap.String("uid", actor.UID))
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, profile)
}

func (h *Handler) RenameHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req renameRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	p, err := h.usecase.Rename(r.Context(), actor, req.Name)
	if err != nil {
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, p)
}
