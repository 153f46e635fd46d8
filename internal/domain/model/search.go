package model

import (
	"fmt"
	"strings"
)

// SearchKind selects the search pipeline.
type SearchKind string

// Supported search kinds.
const (
	SearchRestaurants SearchKind = "restaurant"
	SearchActivities  SearchKind = "activity"
)

// NoveltyMode biases scoring toward mainstream or distinctive venues.
type NoveltyMode string

// Supported novelty modes.
const (
	NoveltyPopular    NoveltyMode = "popular"
	NoveltyBalanced   NoveltyMode = "balanced"
	NoveltyHiddenGems NoveltyMode = "hidden_gems"
)

// ParseNoveltyMode maps user input to a NoveltyMode. Empty input is balanced.
func ParseNoveltyMode(s string) (NoveltyMode, error) {
	switch NoveltyMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NoveltyBalanced:
		return NoveltyBalanced, nil
	case NoveltyPopular:
		return NoveltyPopular, nil
	case NoveltyHiddenGems:
		return NoveltyHiddenGems, nil
	default:
		return "", fmt.Errorf("%w: unknown novelty mode %q", ErrInvalidRequest, s)
	}
}

// PriceTier is the caller-facing price filter.
type PriceTier string

// Supported price tiers.
const (
	PriceAny      PriceTier = ""
	PriceBudget   PriceTier = "budget"
	PriceModerate PriceTier = "moderate"
	PriceUpscale  PriceTier = "upscale"
)

// ParsePriceTier maps user input to a PriceTier.
func ParsePriceTier(s string) (PriceTier, error) {
	switch PriceTier(strings.ToLower(strings.TrimSpace(s))) {
	case PriceAny:
		return PriceAny, nil
	case PriceBudget:
		return PriceBudget, nil
	case PriceModerate:
		return PriceModerate, nil
	case PriceUpscale:
		return PriceUpscale, nil
	default:
		return "", fmt.Errorf("%w: unknown price level %q", ErrInvalidRequest, s)
	}
}

// Levels returns the inclusive provider price-level range for the tier.
// ok is false when no price filter applies.
func (p PriceTier) Levels() (lo, hi int, ok bool) {
	switch p {
	case PriceBudget:
		return 1, 2, true
	case PriceModerate:
		return 2, 3, true
	case PriceUpscale:
		return 3, 4, true
	default:
		return 0, 0, false
	}
}

// MetersPerMile converts the inbound radiusMiles to provider meters.
const MetersPerMile = 1609.344

// SearchRequest is the normalized input of one search.
type SearchRequest struct {
	Kind         SearchKind `validate:"required,oneof=restaurant activity"`
	Center       Coordinate
	RadiusMeters float64     `validate:"gt=0,lte=80000"`
	Keyword      string      `validate:"required_if=Kind activity"`
	Cuisine      string      `validate:"required_if=Kind restaurant"`
	Price        PriceTier   `validate:"omitempty,oneof=budget moderate upscale"`
	TargetCity   string      // soft preference only
	Novelty      NoveltyMode `validate:"omitempty,oneof=popular balanced hidden_gems"`
	Seed         *int64
	ForceFresh   bool
	Surprise     bool
	Exclude      []string    `validate:"dive,required"`
}

// Term returns the free-text term providers should search for.
func (r SearchRequest) Term() string {
	if r.Kind == SearchRestaurants {
		return r.Cuisine
	}
	return r.Keyword
}

// Category returns the venue category requested.
func (r SearchRequest) Category() Category {
	if r.Kind == SearchRestaurants {
		return CategoryRestaurant
	}
	return CategoryActivity
}

// SearchResponse is the outbound result of one search.
type SearchResponse struct {
	Items                  []ScoredVenue
	ProviderStats          map[string]int
	ExcludedCountsByReason map[string]int
	ForceFresh             bool
	Seed                   *int64
}
