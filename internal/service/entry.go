package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/models"
)

// EntryService persists nutrition log entries
type EntryService struct {
	db *gorm.DB
}

// Ensure EntryService implements IEntryService
var _ IEntryService = (*EntryService)(nil)

// NewEntryService creates a new EntryService instance
func NewEntryService(db *gorm.DB) *EntryService {
	return &EntryService{db: db}
}

// CreateEntry inserts a new entry
func (s *EntryService) CreateEntry(ctx context.Context, entry *models.NutritionLogEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return persistenceError("create entry", err)
	}
	return nil
}

// ListEntries returns the owner's entries created on the calendar day that
// contains day, in day's location, newest first.
func (s *EntryService) ListEntries(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]models.NutritionLogEntry, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	entries := []models.NutritionLogEntry{}
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND created_at >= ? AND created_at < ?", ownerID, start.UTC(), end.UTC()).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, persistenceError("list entries", err)
	}
	return entries, nil
}
