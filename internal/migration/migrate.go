package migration

import (
	"github.com/skillswap/skillswap-backend/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for all chat tables. Tables are created when
// missing and altered in place when columns were added.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.ConnectionRequest{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.MessageRead{},
	)
}
