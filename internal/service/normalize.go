package service

import (
	"strings"

	"github.com/pageza/macrolog/backend/internal/model"
)

// Nutrient names a value the normalizer extracts from a raw record.
type Nutrient string

const (
	NutrientCalories Nutrient = "calories"
	NutrientProtein  Nutrient = "protein"
	NutrientCarbs    Nutrient = "carbs"
	NutrientFat      Nutrient = "fat"
)

// NutrientFallbacks lists, per nutrient, the raw keys tried in priority
// order. The first key present wins; if none is present the value is 0.
var NutrientFallbacks = map[Nutrient][]string{
	NutrientCalories: {"energy-kcal_100g", "energy-kcal"},
	NutrientProtein:  {"proteins_100g", "proteins"},
	NutrientCarbs:    {"carbohydrates_100g", "carbohydrates"},
	NutrientFat:      {"fat_100g", "fat"},
}

// resolveNutrient walks the fallback table for one nutrient. A value above
// model.MaxMacroValue is corrupt and resolves to 0.
func resolveNutrient(p model.RawProduct, n Nutrient) float64 {
	for _, key := range NutrientFallbacks[n] {
		if v, ok := p.Nutriment(key); ok {
			if v > model.MaxMacroValue {
				return 0
			}
			return v
		}
	}
	return 0
}

// displayName picks the human-readable name of a raw record.
func displayName(p model.RawProduct) string {
	if name := strings.TrimSpace(p.ProductName); name != "" {
		return name
	}
	return strings.TrimSpace(p.GenericName)
}

// NormalizeProduct converts one raw record. ok is false when the record has
// no name or no usable calorie value.
func NormalizeProduct(p model.RawProduct) (model.MacroRecord, bool) {
	name := displayName(p)
	if name == "" {
		return model.MacroRecord{}, false
	}

	calories := model.RoundWhole(model.NonNegative(resolveNutrient(p, NutrientCalories)))
	if calories == 0 {
		return model.MacroRecord{}, false
	}

	serving := strings.TrimSpace(p.ServingSize)
	if serving == "" {
		serving = model.DefaultServingSize
	}

	return model.MacroRecord{
		Name: model.TruncateName(name),
		Macros: model.Macros{
			Calories: calories,
			Protein:  model.RoundTenth(model.NonNegative(resolveNutrient(p, NutrientProtein))),
			Carbs:    model.RoundTenth(model.NonNegative(resolveNutrient(p, NutrientCarbs))),
			Fat:      model.RoundTenth(model.NonNegative(resolveNutrient(p, NutrientFat))),
		},
		ServingSize: serving,
		SourceID:    strings.TrimSpace(p.Code),
	}, true
}

// Normalize converts raw search records into MacroRecords, dropping unusable
// ones. Input order is preserved.
func Normalize(products []model.RawProduct) []model.MacroRecord {
	records := make([]model.MacroRecord, 0, len(products))
	for _, p := range products {
		if rec, ok := NormalizeProduct(p); ok {
			records = append(records, rec)
		}
	}
	return records
}
