package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationNewRequest NotificationType = "new_request"

	// OwnerRecipient addresses every owner account.
	OwnerRecipient = "owner"
)

type Notification struct {
	ID        string           `gorm:"type:VARCHAR(36);primaryKey" json:"id"`
	To        string           `gorm:"column:recipient;type:VARCHAR(100);not null;index" json:"to"`
	Type      NotificationType `gorm:"type:VARCHAR(32);not null" json:"type"`
	Message   string           `gorm:"type:TEXT;not null" json:"message"`
	RequestID string           `gorm:"type:VARCHAR(36);index" json:"requestId"`
	CreatedAt time.Time        `gorm:"not null;index" json:"createdAt"`
	Read      bool             `gorm:"not null;default:false;index" json:"read"`
}

func (Notification) TableName() string {
	return "notifications"
}

func NewRequestNotification(requestID, requesterName, title string) *Notification {
	return &Notification{
		ID:        uuid.NewString(),
		To:        OwnerRecipient,
		Type:      NotificationNewRequest,
		Message:   fmt.Sprintf("%s requested %q", requesterName, title),
		RequestID: requestID,
		CreatedAt: time.Now().UTC(),
	}
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, to string, unreadOnly bool, limit int) ([]Notification, error)
	// ListUnreadBetween returns unread notifications created in (since, until].
	ListUnreadBetween(ctx context.Context, to string, since, until time.Time) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (*Notification, error)
}
