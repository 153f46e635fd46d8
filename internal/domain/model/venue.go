// Package model contains domain models passed between layers.
package model

// Category tags what kind of place a venue is.
type Category string

// Supported venue categories.
const (
	CategoryRestaurant Category = "restaurant"
	CategoryActivity   Category = "activity"
	CategoryEvent      Category = "event"
)

// Provider names used for tagging and stats.
const (
	ProviderGoogle       = "google"
	ProviderFoursquare   = "foursquare"
	ProviderYelp         = "yelp"
	ProviderTicketmaster = "ticketmaster"
	ProviderEventbrite   = "eventbrite"
)

// Coordinate is a point in float degrees.
type Coordinate struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Venue is a normalized place record from any provider.
type Venue struct {
	ID          string     // provider-scoped identifier
	Name        string     // display name
	Address     string     // street address as returned by the provider
	Rating      float64    // 0..5, 0 means unknown
	ReviewCount int        // non-negative
	Location    Coordinate // venue coordinate
	Category    Category   // restaurant, activity or event
	Provider    string     // provider of origin (retagged after merge)
	PriceLevel  int        // 1..4, 0 when absent
	Chains      []string   // provider-supplied chain membership, when available
	// HasPremiumData reports whether rating/review fields are populated by the
	// provider. When false a zero rating means "no data", not poor quality.
	HasPremiumData bool
	HasPhotos      bool
	Distance       float64  // miles from the current search center
	Types          []string // normalized type labels, lowercase with spaces
}

// HasType reports whether the venue carries the given normalized label.
func (v Venue) HasType(label string) bool {
	for _, t := range v.Types {
		if t == label {
			return true
		}
	}
	return false
}

// Badges are independent boolean labels derived during scoring.
type Badges struct {
	HiddenGem     bool `json:"isHiddenGem"`
	NewDiscovery  bool `json:"isNewDiscovery"`
	LocalFavorite bool `json:"isLocalFavorite"`
}

// ScoredVenue is a Venue plus the scores computed for one search.
// It is never persisted.
type ScoredVenue struct {
	Venue
	Badges

	UniquenessScore float64 // clamped to [0.1, 3.0]
	DateWorthiness  float64 // 0..100, activity tie-breaker
}
