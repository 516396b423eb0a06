package ws

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// Query produces the current result of a live subscription.
type Query func(ctx context.Context) (any, error)

type Subscription struct {
	Topic string
	// Tables whose changes make the query stale.
	Tables []string
	Query  Query
}

// Hub owns every live subscription on this instance and re-runs their
// queries when the change feed reports a write to a table they read.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	feed       ChangeFeed
	upgrader   websocket.Upgrader
	logger     *logger.Logger

	mu    sync.RWMutex
	count int
}

func NewHub(feed ChangeFeed, allowedOrigins []string, log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		feed:       feed,
		logger:     log.Named("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Run dispatches feed changes until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) error {
	changes, err := h.feed.Subscribe(ctx)
	if err != nil {
		close(h.done)
		return fmt.Errorf("failed to subscribe to change feed: %w", err)
	}

	defer h.cleanup()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("live hub shutting down")
			return nil

		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.setCount(len(h.clients))
			metrics.LiveSubscribed(client.sub.Topic)
			h.logger.Debug("subscriber registered",
				zap.String("uid", client.UID),
				zap.String("topic", client.sub.Topic),
				zap.Int("total", len(h.clients)),
			)

		case client := <-h.unregister:
			h.remove(client)

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			h.dispatch(change)
		}
	}
}

func (h *Hub) dispatch(change Change) {
	if change.Table == TableSessions {
		for client := range h.clients {
			if change.matches(client) {
				client.push(NewSessionTerminated())
				h.remove(client)
				h.logger.Info("live subscription terminated", zap.String("uid", client.UID))
			}
		}
		return
	}

	for client := range h.clients {
		if slices.Contains(client.sub.Tables, change.Table) {
			client.markStale()
		}
	}
}

func (c Change) matches(client *Client) bool {
	if c.Session != "" {
		return client.SessionID == c.Session
	}
	return c.ID != "" && client.UID == c.ID
}

func (h *Hub) remove(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	client.close()
	h.setCount(len(h.clients))
	metrics.LiveUnsubscribed(client.sub.Topic)
}

// Notify publishes a change to every hub sharing the feed.
func (h *Hub) Notify(ctx context.Context, table, id string) {
	if err := h.feed.Publish(ctx, Change{Table: table, ID: id}); err != nil {
		h.logger.Error("failed to publish change", zap.Error(err), zap.String("table", table))
	}
}

// TerminateUser closes every live subscription of uid on all instances.
func (h *Hub) TerminateUser(ctx context.Context, uid string) {
	h.Notify(ctx, TableSessions, uid)
}

// TerminateSession closes the live subscriptions opened by one login session.
func (h *Hub) TerminateSession(ctx context.Context, sessionID string) {
	if err := h.feed.Publish(ctx, Change{Table: TableSessions, Session: sessionID}); err != nil {
		h.logger.Error("failed to publish session revocation", zap.Error(err))
	}
}

// Serve upgrades the request and blocks until the subscription ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, uid, sessionID string, sub Subscription) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := newClient(h, conn, uid, sessionID, sub)

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return fmt.Errorf("live hub is not running")
	}

	go client.writePump()
	go client.queryLoop()
	client.readPump()

	return nil
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
}

func (h *Hub) cleanup() {
	for client := range h.clients {
		h.remove(client)
	}
	close(h.done)
	h.logger.Info("live hub cleanup completed")
}
