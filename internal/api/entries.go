package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/models"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

const dateLayout = "2006-01-02"

// EntryHandler composes and lists nutrition log entries
type EntryHandler struct {
	composer  service.IEntryComposer
	entries   service.IEntryService
	templates service.ITemplateService
	log       *logger.Logger
}

func NewEntryHandler(composer service.IEntryComposer, entries service.IEntryService, templates service.ITemplateService, log *logger.Logger) *EntryHandler {
	return &EntryHandler{
		composer:  composer,
		entries:   entries,
		templates: templates,
		log:       log.WithComponent("entries"),
	}
}

func (h *EntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/entries")
	{
		entries.POST("", h.Compose)
		entries.GET("", h.List)
	}
	router.POST("/macros/check", h.CheckMacros)
}

// Compose logs an entry from a search candidate, a template or manual values
func (h *EntryHandler) Compose(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var req types.ComposeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var source service.CompositionSource
	switch req.Source {
	case string(service.SourceSearch):
		if req.Candidate == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "candidate is required for search entries", "field": "candidate"})
			return
		}
		source = service.SearchCandidate{Record: *req.Candidate}
	case string(service.SourceTemplate):
		if req.TemplateID == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "template_id is required for template entries", "field": "template_id"})
			return
		}
		template, err := h.templates.Get(c.Request.Context(), owner, *req.TemplateID)
		if err != nil {
			respondError(c, err)
			return
		}
		source = service.TemplateSource{Template: *template}
	default:
		if req.Manual == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual is required for manual entries", "field": "manual"})
			return
		}
		source = service.ManualInput{
			Name:     req.Manual.Name,
			Calories: req.Manual.Calories,
			Protein:  req.Manual.Protein,
			Carbs:    req.Manual.Carbs,
			Fat:      req.Manual.Fat,
		}
	}

	result, err := h.composer.Compose(c.Request.Context(), service.CompositionRequest{
		OwnerID:        owner,
		Source:         source,
		SaveAsTemplate: req.SaveAsTemplate,
	})
	if errors.Is(err, service.ErrInvalidCalories) {
		body := gin.H{
			"error": err.Error(),
			"field": "calories",
			"state": service.CompositionRejected,
		}
		if result != nil {
			body["macro_check"] = result.MacroCheck
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{
		"state":            result.State,
		"source":           result.Source,
		"entry":            result.Entry,
		"template_outcome": result.TemplateOutcome,
		"macro_check":      result.MacroCheck,
	}
	if result.Template != nil {
		body["template"] = result.Template
	}
	if result.TemplateError != nil {
		body["template_error"] = "template could not be saved"
	}
	c.JSON(http.StatusCreated, body)
}

// List returns one day of entries (?date=YYYY-MM-DD, default today in UTC)
func (h *EntryHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be formatted as YYYY-MM-DD", "field": "date"})
			return
		}
		day = parsed
	}

	entries, err := h.entries.ListEntries(c.Request.Context(), owner, day)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":    day.Format(dateLayout),
		"entries": entries,
		"totals":  sumEntries(entries),
	})
}

// CheckMacros runs the advisory check without composing anything
func (h *EntryHandler) CheckMacros(c *gin.Context) {
	var req types.MacroCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, service.CheckMacros(req.Calories, req.Protein, req.Carbs, req.Fat))
}

func sumEntries(entries []models.NutritionLogEntry) types.DailyTotals {
	var totals types.DailyTotals
	for _, e := range entries {
		totals.Calories += e.Calories
		totals.Protein += e.Protein
		totals.Carbs += e.Carbs
		totals.Fat += e.Fat
		totals.WaterMl += e.WaterMl
	}
	return totals
}
