// Package ranking produces the final order of scored venues.
package ranking

import (
	"math"
	"sort"
	"strings"

	"github.com/datenight/planner/internal/domain/model"
)

// ReasonPreviouslyShown counts venues dropped by the session exclusion set.
const ReasonPreviouslyShown = "previouslyShown"

// Tie-break tolerances.
const (
	restaurantRatingBand = 0.3
	activityRatingBand   = 0.2
	dateWorthinessBand   = 5.0
	defaultSurpriseLimit = 15
)

// Option applies a configuration option to the Orderer.
type Option func(*Orderer)

// WithSurpriseLimit sets how many entries surprise mode keeps.
func WithSurpriseLimit(n int) Option {
	return func(o *Orderer) {
		if n > 0 {
			o.surpriseLimit = n
		}
	}
}

// Orderer sorts, shuffles or truncates scored venues.
type Orderer struct {
	surpriseLimit int
}

// NewOrderer creates an Orderer with configuration options.
func NewOrderer(opts ...Option) *Orderer {
	o := &Orderer{surpriseLimit: defaultSurpriseLimit}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Exclude drops venues whose ID is in ids and returns how many were removed.
func Exclude(venues []model.Venue, ids []string) ([]model.Venue, int) {
	if len(ids) == 0 {
		return venues, 0
	}
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id] = struct{}{}
	}
	kept := make([]model.Venue, 0, len(venues))
	for _, v := range venues {
		if _, ok := skip[v.ID]; ok {
			continue
		}
		kept = append(kept, v)
	}
	return kept, len(venues) - len(kept)
}

// PreferCity moves venues whose address mentions city ahead of the rest,
// keeping relative order within each group. It never drops venues.
func PreferCity(venues []model.Venue, city string) []model.Venue {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return venues
	}
	out := make([]model.Venue, 0, len(venues))
	var rest []model.Venue
	for _, v := range venues {
		if strings.Contains(strings.ToLower(v.Address), city) {
			out = append(out, v)
			continue
		}
		rest = append(rest, v)
	}
	return append(out, rest...)
}

// SortByRating orders venues by rating descending. Used on merged restaurant
// results before quality filtering.
func SortByRating(venues []model.Venue) {
	sort.SliceStable(venues, func(i, j int) bool {
		return venues[i].Rating > venues[j].Rating
	})
}

// Order sorts items for kind, then applies the post-sort transform. Surprise
// takes precedence over seed: a surprise request is truncated and never
// shuffled. The input slice is not modified.
func (o *Orderer) Order(kind model.SearchKind, items []model.ScoredVenue, seed *int64, surprise bool) []model.ScoredVenue {
	out := make([]model.ScoredVenue, len(items))
	copy(out, items)

	if kind == model.SearchRestaurants {
		sortRestaurants(out)
	} else {
		sortActivities(out)
	}

	switch {
	case surprise:
		if len(out) > o.surpriseLimit {
			out = out[:o.surpriseLimit]
		}
	case seed != nil:
		Shuffle(out, *seed)
	}
	return out
}

// sortRestaurants orders by rating (0.3 band), then price level, then uniqueness.
func sortRestaurants(items []model.ScoredVenue) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if math.Abs(a.Rating-b.Rating) > restaurantRatingBand {
			return a.Rating > b.Rating
		}
		if a.PriceLevel != b.PriceLevel {
			return a.PriceLevel > b.PriceLevel
		}
		return a.UniquenessScore > b.UniquenessScore
	})
}

// sortActivities orders by rating (0.2 band), date-worthiness (5 point band),
// uniqueness, then distance.
func sortActivities(items []model.ScoredVenue) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if math.Abs(a.Rating-b.Rating) > activityRatingBand {
			return a.Rating > b.Rating
		}
		if math.Abs(a.DateWorthiness-b.DateWorthiness) > dateWorthinessBand {
			return a.DateWorthiness > b.DateWorthiness
		}
		if a.UniquenessScore != b.UniquenessScore {
			return a.UniquenessScore > b.UniquenessScore
		}
		return a.Distance < b.Distance
	})
}

// Shuffle permutes items in place with a Fisher-Yates walk driven by
// seededRandom. The same seed always yields the same permutation.
func Shuffle[T any](items []T, seed int64) {
	for i := len(items) - 1; i > 0; i-- {
		j := int(seededRandom(seed, i) * float64(i+1))
		items[i], items[j] = items[j], items[i]
	}
}

// seededRandom returns the fractional part of sin(seed+i)*10000, in [0, 1).
func seededRandom(seed int64, i int) float64 {
	x := math.Sin(float64(seed)+float64(i)) * 10000
	return x - math.Floor(x)
}
