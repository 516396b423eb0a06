package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan *Envelope
	stale chan struct{}
	sub   Subscription
	UID   string

	// SessionID is the login session that opened the socket.
	SessionID string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, uid, sessionID string, sub Subscription) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan *Envelope, sendBuffer),
		stale:  make(chan struct{}, 1),
		sub:    sub,
		UID:       uid,
		SessionID: sessionID,
		ctx:    ctx,
		cancel: cancel,
	}
}

// push enqueues a frame. Frames for closed or backed-up clients are dropped.
func (c *Client) push(env *Envelope) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- env:
		return true
	default:
		c.hub.logger.Warn("dropping live frame, client send buffer full",
			zap.String("uid", c.UID),
			zap.String("topic", c.sub.Topic),
		)
		return false
	}
}

func (c *Client) markStale() {
	select {
	case c.stale <- struct{}{}:
	default:
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	close(c.send)
}

func (c *Client) queryLoop() {
	c.push(NewLoading(c.sub.Topic))
	c.refresh()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.stale:
			c.refresh()
		}
	}
}

func (c *Client) refresh() {
	data, err := c.sub.Query(c.ctx)
	if c.ctx.Err() != nil {
		return
	}
	metrics.RecordSnapshot(c.sub.Topic, err)
	c.push(NewSnapshot(c.sub.Topic, data, err))
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("live websocket closed", zap.String("uid", c.UID), zap.Error(err))
			}
			return
		}
		// Subscriptions are read-only; client frames only keep the connection alive.
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.logger.Debug("failed to write live frame", zap.String("uid", c.UID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
