package database

import (
	"fmt"

	"github.com/taskizy-api/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the API, parents first
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Room{},
		&models.RoomMember{},
		&models.Task{},
	}
}

// Migrate migrates the database schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	return nil
}
