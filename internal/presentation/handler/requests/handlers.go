package requests

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/encore/internal/application/usecases/songrequest"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/presentation/binding"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type Handler struct {
	usecase songrequest.SongRequestUseCase
	logger  *logger.Logger
}

func NewHandler(usecase songrequest.SongRequestUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if json.StatusFor(err) == http.StatusInternalServerError {
		h.logger.Error("song request operation failed",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
	}
	json.WriteDomainError(w, err)
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	list, err := h.usecase.List(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, list)
}

func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req submitRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	created, err := h.usecase.Submit(r.Context(), actor, req.SongTitle, req.SongURL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	json.Write(w, http.StatusCreated, created)
}

func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	request, err := h.usecase.Get(r.Context(), actor, chi.URLParam(r, "requestId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, request)
}

func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req updateRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	updated, err := h.usecase.Update(r.Context(), actor, chi.URLParam(r, "requestId"), req.patch())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	json.Write(w, http.StatusOK, updated)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	if err := h.usecase.Delete(r.Context(), actor, chi.URLParam(r, "requestId")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReorderHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	var req reorderRequest
	if !binding.BindJSON(w, r, &req) {
		return
	}

	queue, err := h.usecase.Reorder(r.Context(), actor, req.IDs)
	if err != nil {
		status := json.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to reorder queue", zap.Error(err), zap.String("uid", actor.UID))
		}
		message := err.Error()
		if status == http.StatusInternalServerError {
			message = "The queue could not be reordered"
		}
		json.Write(w, status, reorderFailure{
			Error:   http.StatusText(status),
			Message: message,
			Queue:   queue,
		})
		return
	}

	json.Write(w, http.StatusOK, queue)
}
