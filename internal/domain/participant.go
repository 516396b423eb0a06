package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hilthontt/encore/internal/infrastructure/validate"
)

type ParticipantRole string

const (
	ParticipantStudent ParticipantRole = "student"
	ParticipantAdmin   ParticipantRole = "admin"
	ParticipantOwner   ParticipantRole = "owner"
)

func ParticipantRoleFor(r Roles) ParticipantRole {
	switch {
	case r.IsOwner:
		return ParticipantOwner
	case r.IsAdmin:
		return ParticipantAdmin
	}
	return ParticipantStudent
}

type Participant struct {
	ID        string          `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	Name      string          `gorm:"type:VARCHAR(100);not null" json:"name"`
	Role      ParticipantRole `gorm:"type:VARCHAR(16);not null" json:"role"`
	Disabled  bool            `gorm:"not null;default:false" json:"disabled"`
	CreatedAt time.Time       `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"not null" json:"updatedAt"`
}

func (Participant) TableName() string {
	return "students"
}

func NewParticipant(actor Actor) *Participant {
	return &Participant{
		ID:   actor.UID,
		Name: actor.Name,
		Role: ParticipantRoleFor(actor.Roles),
	}
}

var validateParticipantName = validate.Field("name",
	validate.Required(),
	validate.LengthBetween(2, 100),
)

// NormalizeParticipantName trims and collapses whitespace, then validates.
func NormalizeParticipantName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if err := validateParticipantName(name); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return name, nil
}

type ParticipantRepository interface {
	// Upsert inserts the participant unless a record with its id exists.
	Upsert(ctx context.Context, participant *Participant) error
	GetByID(ctx context.Context, id string) (*Participant, error)
	List(ctx context.Context) ([]Participant, error)
	SetDisabled(ctx context.Context, id string, disabled bool) (*Participant, error)
	// RenameWithRequests renames the participant and every song request it owns
	// in one transaction and returns the number of requests touched.
	RenameWithRequests(ctx context.Context, id, name string) (int64, error)
}
