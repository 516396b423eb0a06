package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// RequestCreatedHandler reacts to a new song request.
type RequestCreatedHandler interface {
	HandleRequestCreated(ctx context.Context, event messaging.SongRequestCreatedData) error
}

type NotificationConsumer struct {
	bus     messaging.Bus
	handler RequestCreatedHandler
	logger  *logger.Logger
}

func NewNotificationConsumer(bus messaging.Bus, handler RequestCreatedHandler, log *logger.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		bus:     bus,
		handler: handler,
		logger:  log.Named("trigger"),
	}
}

// Listen blocks until ctx is done.
func (c *NotificationConsumer) Listen(ctx context.Context) error {
	c.logger.Info("notification trigger listening")
	return c.bus.Consume(ctx, c.handle)
}

func (c *NotificationConsumer) handle(ctx context.Context, d messaging.Delivery) error {
	if d.RoutingKey != messaging.EventSongRequestCreated {
		c.logger.Debug("ignoring event", zap.String("routingKey", d.RoutingKey))
		return nil
	}

	var payload messaging.SongRequestCreatedData
	if err := json.Unmarshal(d.Message.Data, &payload); err != nil {
		metrics.RecordEvent(d.RoutingKey, err)
		return fmt.Errorf("failed to unmarshal %s: %w", d.RoutingKey, err)
	}

	err := c.handler.HandleRequestCreated(ctx, payload)
	metrics.RecordEvent(d.RoutingKey, err)
	return err
}
