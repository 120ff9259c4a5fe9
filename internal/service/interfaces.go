package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/models"
	"github.com/pageza/macrolog/backend/internal/types"
)

// Searcher looks up foods in a remote database and returns normalized records.
type Searcher interface {
	Search(ctx context.Context, query string) ([]model.MacroRecord, error)
}

// ITemplateService defines the personal food template cache ("My Foods")
type ITemplateService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]models.FoodTemplate, error)
	Get(ctx context.Context, ownerID, templateID uuid.UUID) (*models.FoodTemplate, error)
	Save(ctx context.Context, ownerID uuid.UUID, input TemplateInput) (*models.FoodTemplate, error)
	IncrementUse(ctx context.Context, ownerID, templateID uuid.UUID) error
	Use(ctx context.Context, ownerID, templateID uuid.UUID) (*UsedTemplate, error)
	Delete(ctx context.Context, ownerID, templateID uuid.UUID) error
}

// IEntryService defines persistence of nutrition log entries
type IEntryService interface {
	CreateEntry(ctx context.Context, entry *models.NutritionLogEntry) error
	ListEntries(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]models.NutritionLogEntry, error)
}

// IEntryComposer turns a chosen source into a persisted entry
type IEntryComposer interface {
	Compose(ctx context.Context, req CompositionRequest) (*CompositionResult, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, email, password, name string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
