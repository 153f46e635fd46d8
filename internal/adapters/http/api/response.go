package api

import (
	service "github.com/datenight/planner/internal/app"
	"github.com/datenight/planner/internal/domain/model"
)

// venueResponse is the public shape of a ScoredVenue. Geometry and raw type
// labels stay internal.
type venueResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	Rating          float64  `json:"rating"`
	ReviewCount     int      `json:"reviewCount"`
	Category        string   `json:"category"`
	Provider        string   `json:"provider"`
	PriceLevel      int      `json:"priceLevel,omitempty"`
	Distance        float64  `json:"distance"`
	HasPremiumData  bool     `json:"hasPremiumData"`
	Chains          []string `json:"chains,omitempty"`
	UniquenessScore float64  `json:"uniquenessScore"`
	DateWorthiness  float64  `json:"dateWorthiness,omitempty"`
	model.Badges
}

type searchResponse struct {
	Items                  []venueResponse `json:"items"`
	NextPageToken          *string         `json:"nextPageToken"`
	ProviderStats          map[string]int  `json:"providerStats"`
	ExcludedCountsByReason map[string]int  `json:"excludedCountsByReason"`
	ForceFresh             bool            `json:"forceFresh"`
	Seed                   *int64          `json:"seed,omitempty"`
}

type planDistances struct {
	ToRestaurant *float64 `json:"toRestaurant"`
	ToActivity   *float64 `json:"toActivity"`
	Between      *float64 `json:"between"`
}

type planResponse struct {
	ID              string          `json:"id"`
	Mode            string          `json:"mode"`
	Restaurant      *venueResponse  `json:"restaurant"`
	Activity        *venueResponse  `json:"activity"`
	Distances       planDistances   `json:"distances"`
	RestaurantIndex int             `json:"restaurantIndex"`
	ActivityIndex   int             `json:"activityIndex"`
	Restaurants     *searchResponse `json:"restaurants,omitempty"`
	Activities      *searchResponse `json:"activities,omitempty"`
}

func toVenue(v model.ScoredVenue) venueResponse {
	return venueResponse{
		ID:              v.ID,
		Name:            v.Name,
		Address:         v.Address,
		Rating:          v.Rating,
		ReviewCount:     v.ReviewCount,
		Category:        string(v.Category),
		Provider:        v.Provider,
		PriceLevel:      v.PriceLevel,
		Distance:        v.Distance,
		HasPremiumData:  v.HasPremiumData,
		Chains:          v.Chains,
		UniquenessScore: v.UniquenessScore,
		DateWorthiness:  v.DateWorthiness,
		Badges:          v.Badges,
	}
}

func toSearchResponse(r model.SearchResponse) searchResponse {
	items := make([]venueResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = toVenue(it)
	}
	stats := r.ProviderStats
	if stats == nil {
		stats = map[string]int{}
	}
	excluded := r.ExcludedCountsByReason
	if excluded == nil {
		excluded = map[string]int{}
	}
	return searchResponse{
		Items:                  items,
		ProviderStats:          stats,
		ExcludedCountsByReason: excluded,
		ForceFresh:             r.ForceFresh,
		Seed:                   r.Seed,
	}
}

func toPlanResponse(res service.PlanResult) planResponse {
	p := res.Plan
	out := planResponse{
		ID:              p.ID,
		Mode:            string(p.Mode),
		Distances:       planDistances{ToRestaurant: p.ToRestaurant, ToActivity: p.ToActivity, Between: p.Between},
		RestaurantIndex: p.RestaurantIndex,
		ActivityIndex:   p.ActivityIndex,
	}
	if p.Restaurant != nil {
		v := toVenue(*p.Restaurant)
		out.Restaurant = &v
		list := toSearchResponse(res.Restaurants)
		out.Restaurants = &list
	}
	if p.Activity != nil {
		v := toVenue(*p.Activity)
		out.Activity = &v
		list := toSearchResponse(res.Activities)
		out.Activities = &list
	}
	return out
}
