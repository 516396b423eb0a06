package messaging

import (
	"context"
	"time"
)

// AmqpMessage is the envelope carried on the bus.
type AmqpMessage struct {
	OwnerID string `json:"ownerId"`
	Data    []byte `json:"data"`
}

// Routing keys
const (
	EventSongRequestCreated = "song_request.created"
)

const (
	NotificationsQueue = "notifications"
	DeadLetterQueue    = "dead_letter_queue"
)

type SongRequestCreatedData struct {
	RequestID     string    `json:"requestId"`
	ParticipantID string    `json:"participantId"`
	RequesterName string    `json:"requesterName"`
	SongTitle     string    `json:"songTitle"`
	SubmittedAt   time.Time `json:"submittedAt"`
}

// Delivery is one message handed to a consumer with its routing key.
type Delivery struct {
	RoutingKey string
	Message    AmqpMessage
}

type Handler func(ctx context.Context, d Delivery) error

type Bus interface {
	Publish(ctx context.Context, routingKey string, msg AmqpMessage) error
	// Consume blocks, handing deliveries to handler until ctx is done.
	Consume(ctx context.Context, handler Handler) error
	Close()
}
