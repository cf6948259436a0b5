package database

import (
	"jobpilot-admin/internal/session"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&session.SessionEntry{},
	)
}
