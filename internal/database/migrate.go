package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/models"
)

// Models lists every table owned by this service, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.FoodTemplate{},
		&models.NutritionLogEntry{},
	}
}

// RunMigrations brings the schema up to date
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate %s schema: %w", db.Dialector.Name(), err)
	}
	return nil
}
