package model

// PlanMode controls which halves of a plan are required.
type PlanMode string

// Supported plan modes.
const (
	PlanBoth           PlanMode = "both"
	PlanRestaurantOnly PlanMode = "restaurant_only"
	PlanActivityOnly   PlanMode = "activity_only"
)

// Plan pairs at most one restaurant with at most one activity.
// A Plan is immutable once built; swaps and rerolls produce a new Plan.
type Plan struct {
	ID         string
	Mode       PlanMode
	Restaurant *ScoredVenue
	Activity   *ScoredVenue

	// Distances in miles; nil when the corresponding leg does not exist.
	ToRestaurant *float64
	ToActivity   *float64
	Between      *float64

	RestaurantIndex int
	ActivityIndex   int
}
