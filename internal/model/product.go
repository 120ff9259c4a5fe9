package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawProduct is one record of a food database search response. Only the
// fields the normalizer reads are decoded; everything else is ignored.
type RawProduct struct {
	Code        string                     `json:"code"`
	ProductName string                     `json:"product_name"`
	GenericName string                     `json:"generic_name"`
	ServingSize string                     `json:"serving_size"`
	Nutriments  map[string]json.RawMessage `json:"nutriments"`
}

// SearchResponse is the envelope returned by the food database search endpoint.
type SearchResponse struct {
	Count    int          `json:"count"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
	Products []RawProduct `json:"products"`
}

// Nutriment returns the numeric value stored under key. Food databases emit
// numbers as JSON numbers or as strings ("1.1", "2,5"); both are accepted.
// Missing, null, unparsable, NaN or infinite values report ok=false.
func (p RawProduct) Nutriment(key string) (float64, bool) {
	raw, ok := p.Nutriments[key]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num, true
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return 0, false
	}
	str = strings.ReplaceAll(strings.TrimSpace(str), ",", ".")
	if str == "" {
		return 0, false
	}
	num, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}
