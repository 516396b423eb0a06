package domain

import (
	"context"
	"time"
)

// Account is a user of the identity provider.
type Account struct {
	UID          string    `gorm:"type:VARCHAR(36);primaryKey" json:"uid"`
	Email        string    `gorm:"type:VARCHAR(255);not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"type:VARCHAR(100);not null" json:"-"`
	DisplayName  string    `gorm:"type:VARCHAR(100);not null" json:"displayName"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) Actor() Actor {
	return Actor{
		UID:   a.UID,
		Email: a.Email,
		Name:  a.DisplayName,
		Roles: ResolveRoles(a.Email),
	}
}

type AccountRepository interface {
	// Create fails with ErrAccountExists when the email is taken.
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByUID(ctx context.Context, uid string) (*Account, error)
	UpdateDisplayName(ctx context.Context, uid, name string) error
}
