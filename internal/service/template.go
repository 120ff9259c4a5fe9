package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"gorm.io/gorm"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/models"
)

// TemplateInput carries the values of a template to save
type TemplateInput struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// UsedTemplate is the outcome of choosing a template to prefill an entry
type UsedTemplate struct {
	Template *models.FoodTemplate `json:"template"`
	Prefill  ManualInput          `json:"prefill"`
}

// TemplateService manages the personal food template cache ("My Foods").
// Every operation is scoped to one owner.
type TemplateService struct {
	db  *gorm.DB
	log *logger.Logger
}

// Ensure TemplateService implements ITemplateService
var _ ITemplateService = (*TemplateService)(nil)

// NewTemplateService creates a new TemplateService instance
func NewTemplateService(db *gorm.DB, log *logger.Logger) *TemplateService {
	if log == nil {
		log = logger.Discard()
	}
	return &TemplateService{db: db, log: log.WithComponent("templates")}
}

// List returns the owner's templates, most used first
func (s *TemplateService) List(ctx context.Context, ownerID uuid.UUID) ([]models.FoodTemplate, error) {
	templates := []models.FoodTemplate{}
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("use_count DESC").
		Order("created_at DESC").
		Find(&templates).Error
	if err != nil {
		return nil, persistenceError("list templates", err)
	}
	return templates, nil
}

// Get loads one template
func (s *TemplateService) Get(ctx context.Context, ownerID, templateID uuid.UUID) (*models.FoodTemplate, error) {
	var template models.FoodTemplate
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", templateID, ownerID).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, persistenceError("get template", err)
	}
	return &template, nil
}

// Save creates a new template with a use count of zero. Duplicate names
// are allowed.
func (s *TemplateService) Save(ctx context.Context, ownerID uuid.UUID, input TemplateInput) (*models.FoodTemplate, error) {
	name := model.TruncateName(input.Name)
	if name == "" {
		return nil, newValidationError("name", "is required", nil)
	}
	if input.Calories < 0 || input.Calories > model.MaxMacroValue {
		return nil, newValidationError("calories", fmt.Sprintf("must be between 0 and %d", model.MaxMacroValue), nil)
	}
	for _, m := range []struct {
		field string
		value float64
	}{
		{"protein", input.Protein},
		{"carbs", input.Carbs},
		{"fat", input.Fat},
	} {
		if !model.Plausible(m.value) {
			return nil, newValidationError(m.field, fmt.Sprintf("must be a number between 0 and %d", model.MaxMacroValue), nil)
		}
	}

	template := &models.FoodTemplate{
		OwnerID:  ownerID,
		Name:     name,
		Calories: input.Calories,
		Protein:  model.RoundTenth(input.Protein),
		Carbs:    model.RoundTenth(input.Carbs),
		Fat:      model.RoundTenth(input.Fat),
		UseCount: 0,
	}
	if err := s.db.WithContext(ctx).Create(template).Error; err != nil {
		return nil, persistenceError("save template", err)
	}

	s.log.Debug("template saved", "owner_id", ownerID, "template_id", template.ID)
	return template, nil
}

// IncrementUse adds one to the template's use count in a single statement
func (s *TemplateService) IncrementUse(ctx context.Context, ownerID, templateID uuid.UUID) error {
	return incrementUse(s.db.WithContext(ctx), ownerID, templateID)
}

func incrementUse(tx *gorm.DB, ownerID, templateID uuid.UUID) error {
	result := tx.Model(&models.FoodTemplate{}).
		Where("id = ? AND owner_id = ?", templateID, ownerID).
		UpdateColumn("use_count", gorm.Expr("use_count + ?", 1))
	if result.Error != nil {
		return persistenceError("increment template use", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// Use records that the template was chosen and returns the manual-entry
// values it prefills, with macros rounded to whole units.
func (s *TemplateService) Use(ctx context.Context, ownerID, templateID uuid.UUID) (*UsedTemplate, error) {
	var template models.FoodTemplate
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := incrementUse(tx, ownerID, templateID); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND owner_id = ?", templateID, ownerID).First(&template).Error; err != nil {
			return persistenceError("reload template", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &UsedTemplate{
		Template: &template,
		Prefill:  PrefillFromTemplate(&template),
	}, nil
}

// Delete removes the template. Deleting an absent template is not an error.
func (s *TemplateService) Delete(ctx context.Context, ownerID, templateID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", templateID, ownerID).
		Delete(&models.FoodTemplate{}).Error
	if err != nil {
		return persistenceError("delete template", err)
	}
	return nil
}

// PrefillFromTemplate converts a template into manual-entry values
func PrefillFromTemplate(t *models.FoodTemplate) ManualInput {
	return ManualInput{
		Name:     t.Name,
		Calories: t.Calories,
		Protein:  math.Round(t.Protein),
		Carbs:    math.Round(t.Carbs),
		Fat:      math.Round(t.Fat),
	}
}

type templateNames []models.FoodTemplate

func (t templateNames) String(i int) string { return t[i].Name }
func (t templateNames) Len() int            { return len(t) }

// Filter narrows templates to those whose name fuzzily matches query, best
// match first. A blank query returns templates unchanged.
func Filter(templates []models.FoodTemplate, query string) []models.FoodTemplate {
	query = strings.TrimSpace(query)
	if query == "" {
		return templates
	}
	matches := fuzzy.FindFrom(query, templateNames(templates))

	filtered := make([]models.FoodTemplate, 0, len(matches))
	for _, m := range matches {
		filtered = append(filtered, templates[m.Index])
	}
	return filtered
}
