package session

import (
	"context"
	"time"
)

// Session is a server-side login record. A token is valid only while its
// session exists.
type Session struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type Store interface {
	Save(ctx context.Context, s Session) error
	// Get returns domain.ErrSessionNotFound for missing or expired sessions.
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteByUID revokes every session of the account and returns their ids.
	DeleteByUID(ctx context.Context, uid string) ([]string, error)
}
