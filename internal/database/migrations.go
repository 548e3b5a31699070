package database

import (
	"gorm.io/gorm"

	"github.com/kodisha/kodisha/internal/models"
)

// AutoMigrate creates or updates the schema for the MFA subsystem.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.MFAMethod{},
		&models.CacheEntry{},
	)
}
