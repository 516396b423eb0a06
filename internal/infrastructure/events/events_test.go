package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []messaging.SongRequestCreatedData
}

func (h *recordingHandler) HandleRequestCreated(_ context.Context, e messaging.SongRequestCreatedData) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestPublishedRequestReachesTrigger(t *testing.T) {
	bus := messaging.NewMemoryBus(8, logger.NewNop())
	defer bus.Close()

	handler := &recordingHandler{}
	consumer := NewNotificationConsumer(bus, handler, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go consumer.Listen(ctx)

	r, err := domain.NewSongRequest(domain.Actor{UID: "u1", Name: "Jane"}, "Valerie", "https://example.com/v")
	require.NoError(t, err)

	require.NoError(t, NewSongRequestPublisher(bus).PublishCreated(ctx, r))
	require.NoError(t, bus.Publish(ctx, "something.else", messaging.AmqpMessage{}))

	require.Eventually(t, func() bool { return handler.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	handler.mu.Lock()
	got := handler.events[0]
	handler.mu.Unlock()
	assert.Equal(t, r.ID, got.RequestID)
	assert.Equal(t, "Jane", got.RequesterName)
	assert.Equal(t, "Valerie", got.SongTitle)
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	c := NewNotificationConsumer(nil, &recordingHandler{}, logger.NewNop())

	err := c.handle(context.Background(), messaging.Delivery{
		RoutingKey: messaging.EventSongRequestCreated,
		Message:    messaging.AmqpMessage{Data: []byte("not json")},
	})
	assert.Error(t, err)
}
