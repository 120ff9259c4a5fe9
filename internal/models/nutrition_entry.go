package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NutritionLogEntry is one logged food. Macros are stored as whole units.
type NutritionLogEntry struct {
	ID          uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	OwnerID     uuid.UUID  `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Label       *string    `gorm:"size:80" json:"label"`
	Calories    int        `gorm:"not null" json:"calories"`
	Protein     int        `gorm:"not null;default:0" json:"protein"`
	Carbs       int        `gorm:"not null;default:0" json:"carbs"`
	Fat         int        `gorm:"not null;default:0" json:"fat"`
	WaterMl     int        `gorm:"not null;default:0" json:"water_ml"`
	TemplateRef *uuid.UUID `gorm:"type:varchar(36)" json:"template_ref"`
}

// TableName returns the table name for the NutritionLogEntry model
func (NutritionLogEntry) TableName() string {
	return "nutrition_log_entries"
}

func (e *NutritionLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
