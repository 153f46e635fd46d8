// Package quality drops venues that fail minimum rating and review floors.
package quality

import "github.com/datenight/planner/internal/domain/model"

// Drop reasons reported by the filter.
const (
	ReasonLowRating  = "lowRating"
	ReasonFewReviews = "fewReviews"
	ReasonNoPhotos   = "noPhotosFewReviews"
)

// Floors holds the minimum quality thresholds per category.
type Floors struct {
	RestaurantMinRating         float64 `koanf:"restaurant_min_rating"`
	RestaurantMinReviews        int     `koanf:"restaurant_min_reviews"`
	RestaurantPhotoMinReviews   int     `koanf:"restaurant_photo_min_reviews"`
	RestaurantNoPhotoMinReviews int     `koanf:"restaurant_no_photo_min_reviews"`
	ActivityMinRating           float64 `koanf:"activity_min_rating"`
	ActivityMinReviews          int     `koanf:"activity_min_reviews"`
}

// DefaultFloors returns the production floors.
func DefaultFloors() Floors {
	return Floors{
		RestaurantMinRating:         3.8,
		RestaurantMinReviews:        10,
		RestaurantPhotoMinReviews:   10,
		RestaurantNoPhotoMinReviews: 50,
		ActivityMinRating:           3.5,
		ActivityMinReviews:          5,
	}
}

// Filter applies Floors to venue lists.
type Filter struct {
	floors Floors
}

// NewFilter creates a Filter.
func NewFilter(f Floors) *Filter {
	return &Filter{floors: f}
}

// Filter returns the venues that clear the floors and drop counts per reason.
// Exemptions are checked before any floor: venues without premium data are
// never judged on rating or reviews, and events are not rated like venues.
func (f *Filter) Filter(venues []model.Venue) ([]model.Venue, map[string]int) {
	dropped := make(map[string]int)
	kept := make([]model.Venue, 0, len(venues))
	for _, v := range venues {
		if reason := f.check(v); reason != "" {
			dropped[reason]++
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}

func (f *Filter) check(v model.Venue) string {
	if !v.HasPremiumData || v.Category == model.CategoryEvent {
		return ""
	}

	minRating, minReviews := f.floors.ActivityMinRating, f.floors.ActivityMinReviews
	if v.Category == model.CategoryRestaurant {
		minRating, minReviews = f.floors.RestaurantMinRating, f.floors.RestaurantMinReviews
	}

	if v.Rating > 0 && v.Rating < minRating {
		return ReasonLowRating
	}
	if v.ReviewCount < minReviews {
		return ReasonFewReviews
	}

	if v.Category == model.CategoryRestaurant {
		need := f.floors.RestaurantPhotoMinReviews
		if !v.HasPhotos {
			need = f.floors.RestaurantNoPhotoMinReviews
		}
		if v.ReviewCount < need {
			return ReasonNoPhotos
		}
	}
	return ""
}
