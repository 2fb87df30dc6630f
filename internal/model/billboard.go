// Package model defines the canonical billboard inventory types shared by
// the ingestion pipeline and the query service.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// BoardType distinguishes static vinyl faces from digital displays.
type BoardType string

const (
	BoardTypeStatic  BoardType = "static"
	BoardTypeDigital BoardType = "digital"
)

// TrafficTier buckets daily impressions into ordinal exposure levels.
type TrafficTier string

const (
	TrafficTierLow    TrafficTier = "low"
	TrafficTierMedium TrafficTier = "medium"
	TrafficTierHigh   TrafficTier = "high"
	TrafficTierPrime  TrafficTier = "prime"
)

// PriceTier buckets pricing signals into dollar-sign bands.
type PriceTier string

const (
	PriceTierBudget   PriceTier = "$"
	PriceTierStandard PriceTier = "$$"
	PriceTierPremium  PriceTier = "$$$"
	PriceTierTop      PriceTier = "$$$$"
)

// ParseBoardType validates a board type string.
func ParseBoardType(s string) (BoardType, error) {
	switch BoardType(s) {
	case BoardTypeStatic, BoardTypeDigital:
		return BoardType(s), nil
	}
	return "", eris.Errorf("invalid board_type %q; use static or digital", s)
}

// ParseTrafficTier validates a traffic tier string.
func ParseTrafficTier(s string) (TrafficTier, error) {
	switch TrafficTier(s) {
	case TrafficTierLow, TrafficTierMedium, TrafficTierHigh, TrafficTierPrime:
		return TrafficTier(s), nil
	}
	return "", eris.Errorf("invalid traffic_tier %q; use low, medium, high, or prime", s)
}

// ParsePriceTier validates a price tier string.
func ParsePriceTier(s string) (PriceTier, error) {
	switch PriceTier(s) {
	case PriceTierBudget, PriceTierStandard, PriceTierPremium, PriceTierTop:
		return PriceTier(s), nil
	}
	return "", eris.Errorf("invalid price_tier %q; use $, $$, $$$, or $$$$", s)
}

// RawProperties preserves a source record verbatim for detail rendering.
type RawProperties map[string]any

// Billboard is the canonical inventory row shared by all ingestion sources.
type Billboard struct {
	ID               string        `json:"id"`
	CityID           string        `json:"city_id"`
	Name             *string       `json:"name"`
	Vendor           *string       `json:"vendor"`
	Address          *string       `json:"address"`
	Zipcode          *string       `json:"zipcode"`
	Latitude         float64       `json:"latitude"`
	Longitude        float64       `json:"longitude"`
	BoardType        BoardType     `json:"board_type"`
	TrafficTier      TrafficTier   `json:"traffic_tier"`
	PriceTier        PriceTier     `json:"price_tier"`
	ImageURL         *string       `json:"image_url"`
	Source           string        `json:"source"`
	SourceProperties RawProperties `json:"source_properties"`

	// Reserved for future use; always null today.
	Traffic    *int64 `json:"traffic"`
	PriceCents *int64 `json:"price_cents"`
}

// TrimToNull normalizes an optional string value pulled from a raw source
// record: non-strings, empty strings, and all-whitespace strings become nil.
func TrimToNull(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}
