package messaging

import (
	"context"
	"errors"
	"sync"

	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"go.uber.org/zap"
)

var ErrBusClosed = errors.New("bus closed")

// MemoryBus is an in-process Bus for single-instance runs and tests.
type MemoryBus struct {
	queue  chan Delivery
	logger *logger.Logger

	once   sync.Once
	closed chan struct{}
}

func NewMemoryBus(buffer int, log *logger.Logger) *MemoryBus {
	return &MemoryBus{
		queue:  make(chan Delivery, buffer),
		logger: log.Named("bus"),
		closed: make(chan struct{}),
	}
}

func (b *MemoryBus) Publish(ctx context.Context, routingKey string, msg AmqpMessage) error {
	select {
	case <-b.closed:
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- Delivery{RoutingKey: routingKey, Message: msg}:
		return nil
	case <-b.closed:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBus) Consume(ctx context.Context, handler Handler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.closed:
			return nil
		case d := <-b.queue:
			if err := handler(ctx, d); err != nil {
				b.logger.Error("failed to handle message", zap.Error(err), zap.String("routingKey", d.RoutingKey))
			}
		}
	}
}

func (b *MemoryBus) Close() {
	b.once.Do(func() { close(b.closed) })
}
