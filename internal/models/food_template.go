package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodTemplate is a personal, reusable food saved to "My Foods".
// Names are not unique per owner.
type FoodTemplate struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	OwnerID   uuid.UUID      `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	Name      string         `gorm:"size:80;not null" json:"name"`
	Calories  int            `gorm:"not null" json:"calories"`
	Protein   float64        `gorm:"not null;default:0" json:"protein"`
	Carbs     float64        `gorm:"not null;default:0" json:"carbs"`
	Fat       float64        `gorm:"not null;default:0" json:"fat"`
	UseCount  int            `gorm:"not null;default:0" json:"use_count"`
}

// TableName returns the table name for the FoodTemplate model
func (FoodTemplate) TableName() string {
	return "food_templates"
}

func (t *FoodTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
