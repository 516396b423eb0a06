package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/encore/internal/domain"
	"github.com/hilthontt/encore/internal/infrastructure/messaging"
)

type SongRequestPublisher struct {
	bus messaging.Bus
}

func NewSongRequestPublisher(bus messaging.Bus) *SongRequestPublisher {
	return &SongRequestPublisher{
		bus: bus,
	}
}

func (p *SongRequestPublisher) PublishCreated(ctx context.Context, r *domain.SongRequest) error {
	payload := messaging.SongRequestCreatedData{
		RequestID:     r.ID,
		ParticipantID: r.ParticipantID,
		RequesterName: r.RequesterName,
		SongTitle:     r.SongTitle,
		SubmittedAt:   r.SubmittedAt,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.bus.Publish(ctx, messaging.EventSongRequestCreated, messaging.AmqpMessage{
		OwnerID: r.ParticipantID,
		Data:    data,
	})
}
