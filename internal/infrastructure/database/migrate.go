package database

import (
	"fmt"

	"github.com/hilthontt/encore/internal/domain"
	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []any {
	return []any{
		&domain.Account{},
		&domain.Participant{},
		&domain.SongRequest{},
		&domain.Notification{},
		&domain.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
