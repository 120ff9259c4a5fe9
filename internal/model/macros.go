package model

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNameLength bounds display names taken from external records.
	MaxNameLength = 80
	// DefaultServingSize is used when a source does not state one.
	DefaultServingSize = "100g"
	// MaxMacroValue bounds any single calorie or macro amount. Larger values
	// are treated as corrupt data.
	MaxMacroValue = 100000
)

// Macros represents calories and macronutrients.
type Macros struct {
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MacroRecord is the canonical nutrition fact for one food.
type MacroRecord struct {
	Name        string `json:"name"`
	Macros
	ServingSize string `json:"serving_size"`
	SourceID    string `json:"source_id,omitempty"`
}

// RoundTenth rounds to one decimal place, half away from zero.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundWhole rounds to the nearest integer, half away from zero. The result
// saturates at ±MaxMacroValue and NaN becomes 0.
func RoundWhole(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > MaxMacroValue:
		return MaxMacroValue
	case v < -MaxMacroValue:
		return -MaxMacroValue
	}
	return int(math.Round(v))
}

// NonNegative clamps v into [0, MaxMacroValue]. NaN becomes 0.
func NonNegative(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > MaxMacroValue:
		return MaxMacroValue
	}
	return v
}

// Plausible reports whether v is a finite amount within [0, MaxMacroValue].
func Plausible(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= MaxMacroValue
}

// TruncateName trims whitespace and cuts the name to MaxNameLength runes.
func TruncateName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) <= MaxNameLength {
		return name
	}
	return string([]rune(name)[:MaxNameLength])
}
