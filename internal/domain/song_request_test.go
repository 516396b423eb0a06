package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSongRequest(t *testing.T) {
	actor := Actor{UID: "u1", Name: "Jane Doe", Roles: Roles{IsParticipant: true}}

	r, err := NewSongRequest(actor, "  Bohemian Rhapsody ", "https://youtu.be/fJ9rUzIMcZQ")
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Bohemian Rhapsody", r.SongTitle)
	assert.Equal(t, "u1", r.ParticipantID)
	assert.Equal(t, "Jane Doe", r.RequesterName)
	assert.Equal(t, StatusPending, r.Status)
	assert.False(t, r.SubmittedAt.IsZero())
}

func TestNewSongRequestValidation(t *testing.T) {
	actor := Actor{UID: "u1", Name: "Jane"}

	_, err := NewSongRequest(actor, "", "https://example.com")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NewSongRequest(actor, "Song", "not a url")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRequestStatus(t *testing.T) {
	assert.False(t, StatusPending.Resolved())
	assert.True(t, StatusApproved.Resolved())
	assert.True(t, StatusPlayed.Resolved())
	assert.False(t, RequestStatus("queued").Valid())
}

func TestSongRequestPatch(t *testing.T) {
	var empty SongRequestPatch
	assert.ErrorIs(t, empty.Normalize(), ErrInvalidInput)

	title := "  New Title "
	p := SongRequestPatch{SongTitle: &title}
	require.NoError(t, p.Normalize())
	assert.Equal(t, "New Title", *p.SongTitle)
	assert.False(t, p.TouchesStaffFields())
	assert.Equal(t, map[string]any{"song_title": "New Title"}, p.Columns())

	bad := RequestStatus("bogus")
	p = SongRequestPatch{Status: &bad}
	err := p.Normalize()
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorContains(t, err, "status: must be one of: pending, approved")

	order := 3
	st := StatusApproved
	p = SongRequestPatch{Status: &st, Order: &order}
	require.NoError(t, p.Normalize())
	assert.True(t, p.TouchesStaffFields())
	assert.Equal(t, map[string]any{"status": "approved", "queue_order": 3}, p.Columns())
}

func TestValidateReorder(t *testing.T) {
	assert.NoError(t, ValidateReorder([]string{"a", "b", "c"}))
	assert.ErrorIs(t, ValidateReorder(nil), ErrInvalidReorder)
	assert.ErrorIs(t, ValidateReorder([]string{"a", "a"}), ErrInvalidReorder)
	assert.ErrorIs(t, ValidateReorder([]string{"a", ""}), ErrInvalidReorder)
}

func TestNewRequestNotification(t *testing.T) {
	n := NewRequestNotification("r1", "Jane Doe", "Let It Be")

	assert.Equal(t, OwnerRecipient, n.To)
	assert.Equal(t, NotificationNewRequest, n.Type)
	assert.Equal(t, `Jane Doe requested "Let It Be"`, n.Message)
	assert.False(t, n.Read)
}
