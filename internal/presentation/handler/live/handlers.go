package live

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/encore/internal/application/usecases/notification"
	"github.com/hilthontt/encore/internal/application/usecases/songrequest"
	"github.com/hilthontt/encore/internal/infrastructure/json"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/ws"
	"github.com/hilthontt/encore/internal/presentation/middlewares"
	"go.uber.org/zap"
)

const (
	TopicQueue         = "queue"
	TopicRequest       = "request"
	TopicNotifications = "notifications"
)

type Handler struct {
	hub           *ws.Hub
	requests      songrequest.SongRequestUseCase
	notifications notification.NotificationUseCase
	logger        *logger.Logger
}

func NewHandler(
	hub *ws.Hub,
	requests songrequest.SongRequestUseCase,
	notifications notification.NotificationUseCase,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		hub:           hub,
		requests:      requests,
		notifications: notifications,
		logger:        logger,
	}
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request, sub ws.Subscription) {
	actor, ok := middlewares.GetActorFromContext(r.Context())
	if !ok {
		json.WriteUnauthorizedError(w)
		return
	}

	if err := h.hub.Serve(w, r, actor.UID, actor.SessionID, sub); err != nil {
		h.logger.Warn("live subscription ended with error",
			zap.Error(err),
			zap.String("topic", sub.Topic),
			zap.String("uid", actor.UID))
	}
}

// QueueHandler streams the caller's role query: the whole queue for staff,
// the caller's own requests otherwise.
func (h *Handler) QueueHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	h.serve(w, r, ws.Subscription{
		Topic:  TopicQueue,
		Tables: []string{ws.TableSongRequests},
		Query: func(ctx context.Context) (any, error) {
			return h.requests.List(ctx, actor)
		},
	})
}

func (h *Handler) RequestHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())
	id := chi.URLParam(r, "requestId")

	// Fail before the upgrade so the client gets a plain status code.
	if _, err := h.requests.Get(r.Context(), actor, id); err != nil {
		json.WriteDomainError(w, err)
		return
	}

	h.serve(w, r, ws.Subscription{
		Topic:  TopicRequest,
		Tables: []string{ws.TableSongRequests},
		Query: func(ctx context.Context) (any, error) {
			return h.requests.Get(ctx, actor, id)
		},
	})
}

func (h *Handler) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	actor, _ := middlewares.GetActorFromContext(r.Context())

	h.serve(w, r, ws.Subscription{
		Topic:  TopicNotifications,
		Tables: []string{ws.TableNotifications},
		Query: func(ctx context.Context) (any, error) {
			return h.notifications.List(ctx, actor, false, 0)
		},
	})
}
