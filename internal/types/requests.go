package types

import (
	"github.com/google/uuid"

	"github.com/pageza/macrolog/backend/internal/model"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
}

// MacroValues are macro numbers typed by the user
type MacroValues struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// CreateTemplateRequest represents the request body for saving to "My Foods"
type CreateTemplateRequest struct {
	MacroValues
}

// ComposeEntryRequest represents the request body for logging an entry.
// Exactly one of Candidate, TemplateID or Manual is read, chosen by Source.
type ComposeEntryRequest struct {
	Source         string             `json:"source" binding:"required,oneof=search template manual"`
	Candidate      *model.MacroRecord `json:"candidate"`
	TemplateID     *uuid.UUID         `json:"template_id"`
	Manual         *MacroValues       `json:"manual"`
	SaveAsTemplate bool               `json:"save_as_template"`
}

// MacroCheckRequest represents the request body for the advisory check
type MacroCheckRequest struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// LiveSearchMessage is sent by websocket clients on every query change
type LiveSearchMessage struct {
	Query string `json:"query"`
}

// DailyTotals sums the entries of one day
type DailyTotals struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
	WaterMl  int `json:"water_ml"`
}
