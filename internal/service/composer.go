package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/model"
	"github.com/pageza/macrolog/backend/internal/models"
)

// MacroDiscrepancyThreshold is how far, in kcal, computed energy may drift
// from entered calories before the advisory check flags it.
const MacroDiscrepancyThreshold = 50

// SourceKind names the acquisition path of a composition
type SourceKind string

const (
	SourceSearch   SourceKind = "search"
	SourceTemplate SourceKind = "template"
	SourceManual   SourceKind = "manual"
)

// CompositionSource is one of SearchCandidate, TemplateSource or ManualInput
type CompositionSource interface {
	Kind() SourceKind
	values() ManualInput
}

// SearchCandidate is a record picked from search results
type SearchCandidate struct {
	Record model.MacroRecord
}

func (SearchCandidate) Kind() SourceKind { return SourceSearch }

func (s SearchCandidate) values() ManualInput {
	return ManualInput{
		Name:     s.Record.Name,
		Calories: s.Record.Calories,
		Protein:  s.Record.Protein,
		Carbs:    s.Record.Carbs,
		Fat:      s.Record.Fat,
	}
}

// TemplateSource is a template picked from "My Foods"
type TemplateSource struct {
	Template models.FoodTemplate
}

func (TemplateSource) Kind() SourceKind { return SourceTemplate }

func (s TemplateSource) values() ManualInput {
	return ManualInput{
		Name:     s.Template.Name,
		Calories: s.Template.Calories,
		Protein:  s.Template.Protein,
		Carbs:    s.Template.Carbs,
		Fat:      s.Template.Fat,
	}
}

// ManualInput holds values typed by the user
type ManualInput struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (ManualInput) Kind() SourceKind { return SourceManual }

func (m ManualInput) values() ManualInput { return m }

// CompositionRequest asks for one entry to be composed
type CompositionRequest struct {
	OwnerID        uuid.UUID
	Source         CompositionSource
	SaveAsTemplate bool
}

// CompositionState is the terminal state of a composition
type CompositionState string

const (
	CompositionRejected  CompositionState = "rejected"
	CompositionPersisted CompositionState = "persisted"
)

// TemplateOutcome reports what happened to the optional template save
type TemplateOutcome string

const (
	TemplateNotRequested TemplateOutcome = "not_requested"
	TemplateSkipped      TemplateOutcome = "skipped"
	TemplateSaved        TemplateOutcome = "template_saved"
	TemplateSaveFailed   TemplateOutcome = "template_save_failed"
)

// MacroCheck compares energy from macros against entered calories
type MacroCheck struct {
	Computed    float64 `json:"computed"`
	Entered     int     `json:"entered"`
	Difference  float64 `json:"difference"`
	Discrepancy bool    `json:"discrepancy"`
}

// CompositionResult describes a finished composition
type CompositionResult struct {
	State           CompositionState          `json:"state"`
	Source          SourceKind                `json:"source"`
	Entry           *models.NutritionLogEntry `json:"entry,omitempty"`
	TemplateOutcome TemplateOutcome           `json:"template_outcome"`
	Template        *models.FoodTemplate      `json:"template,omitempty"`
	TemplateError   error                     `json:"-"`
	MacroCheck      MacroCheck                `json:"macro_check"`
}

// EntryCreator persists entries
type EntryCreator interface {
	CreateEntry(ctx context.Context, entry *models.NutritionLogEntry) error
}

// TemplateSaver persists templates
type TemplateSaver interface {
	Save(ctx context.Context, ownerID uuid.UUID, input TemplateInput) (*models.FoodTemplate, error)
}

// EntryComposer merges a chosen source into a persisted log entry
type EntryComposer struct {
	entries   EntryCreator
	templates TemplateSaver
	log       *logger.Logger
}

// Ensure EntryComposer implements IEntryComposer
var _ IEntryComposer = (*EntryComposer)(nil)

// NewEntryComposer creates a new EntryComposer instance
func NewEntryComposer(entries EntryCreator, templates TemplateSaver, log *logger.Logger) *EntryComposer {
	if log == nil {
		log = logger.Discard()
	}
	return &EntryComposer{
		entries:   entries,
		templates: templates,
		log:       log.WithComponent("composer"),
	}
}

// CheckMacros runs the advisory consistency check. It never blocks a
// composition. Sources without any macros are not flagged.
func CheckMacros(calories int, protein, carbs, fat float64) MacroCheck {
	protein, carbs, fat = model.NonNegative(protein), model.NonNegative(carbs), model.NonNegative(fat)
	computed := protein*4 + carbs*4 + fat*9
	diff := math.Abs(computed - float64(calories))
	return MacroCheck{
		Computed:    model.RoundTenth(computed),
		Entered:     calories,
		Difference:  model.RoundTenth(diff),
		Discrepancy: computed > 0 && diff > MacroDiscrepancyThreshold,
	}
}

// checkRange rejects amounts that are not finite or exceed model.MaxMacroValue.
// Negative macros are clamped to zero later and pass here.
func checkRange(v ManualInput) error {
	if v.Calories > model.MaxMacroValue {
		return newValidationError("calories", fmt.Sprintf("must not exceed %d", model.MaxMacroValue), nil)
	}
	for _, m := range []struct {
		field string
		value float64
	}{
		{"protein", v.Protein},
		{"carbs", v.Carbs},
		{"fat", v.Fat},
	} {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) || m.value > model.MaxMacroValue {
			return newValidationError(m.field, fmt.Sprintf("must be a finite number no greater than %d", model.MaxMacroValue), nil)
		}
	}
	return nil
}

// Compose validates the source, persists the entry and, when asked, saves
// the source as a template. A rejected composition has no side effects. A
// failed template save is reported in the result and does not fail the call.
func (c *EntryComposer) Compose(ctx context.Context, req CompositionRequest) (*CompositionResult, error) {
	if req.Source == nil {
		return nil, newValidationError("source", "is required", nil)
	}

	v := req.Source.values()
	name := model.TruncateName(v.Name)
	result := &CompositionResult{
		Source:          req.Source.Kind(),
		TemplateOutcome: TemplateNotRequested,
	}

	if err := checkRange(v); err != nil {
		result.State = CompositionRejected
		return result, err
	}
	result.MacroCheck = CheckMacros(v.Calories, v.Protein, v.Carbs, v.Fat)

	if v.Calories <= 0 {
		result.State = CompositionRejected
		return result, newValidationError("calories", "must be greater than zero", ErrInvalidCalories)
	}

	entry := &models.NutritionLogEntry{
		OwnerID:     req.OwnerID,
		Calories:    v.Calories,
		Protein:     model.RoundWhole(model.NonNegative(v.Protein)),
		Carbs:       model.RoundWhole(model.NonNegative(v.Carbs)),
		Fat:         model.RoundWhole(model.NonNegative(v.Fat)),
		WaterMl:     0,
		TemplateRef: nil,
	}
	if name != "" {
		entry.Label = &name
	}

	if err := c.entries.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}
	result.State = CompositionPersisted
	result.Entry = entry

	if !req.SaveAsTemplate {
		return result, nil
	}
	if strings.TrimSpace(name) == "" {
		result.TemplateOutcome = TemplateSkipped
		return result, nil
	}

	template, err := c.templates.Save(ctx, req.OwnerID, TemplateInput{
		Name:     name,
		Calories: v.Calories,
		Protein:  model.RoundTenth(model.NonNegative(v.Protein)),
		Carbs:    model.RoundTenth(model.NonNegative(v.Carbs)),
		Fat:      model.RoundTenth(model.NonNegative(v.Fat)),
	})
	if err != nil {
		c.log.Warn("template save failed after entry was persisted",
			"owner_id", req.OwnerID,
			"entry_id", entry.ID,
			"error", err,
		)
		result.TemplateOutcome = TemplateSaveFailed
		result.TemplateError = err
		return result, nil
	}

	result.TemplateOutcome = TemplateSaved
	result.Template = template
	return result, nil
}
