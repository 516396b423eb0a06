package notifications

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/encore/internal/application/usecases/notification"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

type Handler struct {
	usecase notification.NotificationUseCase
	logger  *logger.Logger
}

func NewHandler(usecase notification.NotificationUseCase, logger *logger.Logger) *Handler {
	return &Handler{
		usecase: usecase,
		logger:  logger,
	}
}

// ListHandler serves GET /notifications?unread=true&limit=50.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())
	q := r.URL.Query()

	unread := false
	if v := q.Get("unread"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			json.WriteBadRequestError(w, "unread must be a boolean")
			return
		}
		unread = parsed
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			json.WriteBadRequestError(w, "limit must be a number")
			return
		}
		limit = parsed
	}

	items, err := h.usecase.List(r.Context(), actor, unread, limit)
	if err != nil {
		if json.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed to list notifications", zap.Error(err))
		}
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, items)
}

func (h *Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	n, err := h.usecase.MarkRead(r.Context(), actor, chi.URLParam(r, "notificationId"))
	if err != nil {
		if json.StatusFor(err) == http.StatusInternalServerError {
			h.logger.Error("failed to mark notification read", zap.Error(err))
		}
		json.WriteDomainError(w, err)
		return
	}

	json.Write(w, http.StatusOK, n)
}
