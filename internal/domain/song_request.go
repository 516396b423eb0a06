package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/hilthontt/encore/internal/domain/filter"
	"github.com/hilthontt/encore/internal/infrastructure/validate"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
	StatusPlaying  RequestStatus = "playing"
	StatusPlayed   RequestStatus = "played"
)

var validateStatus = validate.Field("status", validate.OneOf(
	string(StatusPending),
	string(StatusApproved),
	string(StatusRejected),
	string(StatusPlaying),
	string(StatusPlayed),
))

func (s RequestStatus) Valid() bool {
	return validateStatus(string(s)) == nil
}

// Resolved reports whether staff have acted on the request.
func (s RequestStatus) Resolved() bool {
	return s != StatusPending
}

type SongRequest struct {
	ID            string        `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	SongTitle     string        `gorm:"type:VARCHAR(200);not null" json:"songTitle"`
	SongURL       string        `gorm:"type:TEXT;not null" json:"songUrl"`
	ParticipantID string        `gorm:"type:VARCHAR(36);not null;index" json:"participantId"`
	RequesterName string        `gorm:"type:VARCHAR(100);not null" json:"requesterName"`
	SubmittedAt   time.Time     `gorm:"not null;index" json:"submittedAt"`
	Order         int           `gorm:"column:queue_order;not null;index" json:"order"`
	Status        RequestStatus `gorm:"type:VARCHAR(16);not null;index" json:"status"`
	CreatedAt     time.Time     `gorm:"not null" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updatedAt"`
}

func (SongRequest) TableName() string {
	return "song_requests"
}

var (
	validateSongTitle = validate.Field("song title", validate.Required(), validate.MaxLength(200))
	validateSongURL   = validate.Field("song url", validate.Required(), validate.HTTPURL())
)

// NewSongRequest builds a pending request. Order is assigned by the repository.
func NewSongRequest(requester Actor, title, songURL string) (*SongRequest, error) {
	title = strings.TrimSpace(title)
	songURL = strings.TrimSpace(songURL)

	if err := validateSongTitle(title); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validateSongURL(songURL); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return &SongRequest{
		ID:            uuid.NewString(),
		SongTitle:     title,
		SongURL:       songURL,
		ParticipantID: requester.UID,
		RequesterName: requester.Name,
		SubmittedAt:   time.Now().UTC(),
		Status:        StatusPending,
	}, nil
}

func (r *SongRequest) OwnedBy(uid string) bool {
	return r.ParticipantID == uid
}

// SongRequestPatch carries the fields an update may change. Nil means untouched.
type SongRequestPatch struct {
	SongTitle *string        `json:"songTitle,omitempty"`
	SongURL   *string        `json:"songUrl,omitempty"`
	Status    *RequestStatus `json:"status,omitempty"`
	Order     *int           `json:"order,omitempty"`
}

func (p SongRequestPatch) Empty() bool {
	return p.SongTitle == nil && p.SongURL == nil && p.Status == nil && p.Order == nil
}

// TouchesStaffFields reports whether the patch changes fields only staff may set.
func (p SongRequestPatch) TouchesStaffFields() bool {
	return p.Status != nil || p.Order != nil
}

// Normalize trims and validates the patch in place.
func (p *SongRequestPatch) Normalize() error {
	if p.Empty() {
		return fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if p.SongTitle != nil {
		t := strings.TrimSpace(*p.SongTitle)
		if err := validateSongTitle(t); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		p.SongTitle = &t
	}
	if p.SongURL != nil {
		u := strings.TrimSpace(*p.SongURL)
		if err := validateSongURL(u); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		p.SongURL = &u
	}
	if p.Status != nil {
		if err := validateStatus(string(*p.Status)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	if p.Order != nil && *p.Order < 0 {
		return fmt.Errorf("%w: order must not be negative", ErrInvalidInput)
	}
	return nil
}

// Columns maps the patch onto table columns.
func (p SongRequestPatch) Columns() map[string]any {
	cols := make(map[string]any, 4)
	if p.SongTitle != nil {
		cols["song_title"] = *p.SongTitle
	}
	if p.SongURL != nil {
		cols["song_url"] = *p.SongURL
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Order != nil {
		cols["queue_order"] = *p.Order
	}
	return cols
}

type SongRequestRepository interface {
	// Create stores the request with order one past the current maximum.
	Create(ctx context.Context, request *SongRequest) error
	GetByID(ctx context.Context, id string) (*SongRequest, error)
	List(ctx context.Context, f filter.DynamicFilter) ([]SongRequest, error)
	Update(ctx context.Context, id string, patch SongRequestPatch) (*SongRequest, error)
	Delete(ctx context.Context, id string) error
	// Reorder sets order = index for every id in a single atomic batch.
	// Requests missing from ids keep their relative rank after the sequence.
	Reorder(ctx context.Context, ids []string) error
}

// ValidateReorder rejects empty sequences and duplicate ids.
func ValidateReorder(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: sequence is empty", ErrInvalidReorder)
	}
	seen := mapset.NewThreadUnsafeSetWithSize[string](len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty id", ErrInvalidReorder)
		}
		if !seen.Add(id) {
			return fmt.Errorf("%w: duplicate id %s", ErrInvalidReorder, id)
		}
	}
	return nil
}
