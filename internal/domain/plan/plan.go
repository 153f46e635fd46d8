// Package plan pairs a ranked restaurant with a ranked activity.
package plan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/datenight/planner/internal/domain/geo"
	"github.com/datenight/planner/internal/domain/model"
)

// Sentinel errors for plan building.
var (
	ErrEmptyPlan       = errors.New("plan has neither a restaurant nor an activity")
	ErrIndexOutOfRange = errors.New("selection index out of range")
	ErrUnknownMode     = errors.New("unknown plan mode")
)

// Setting is an indoor/outdoor hint, typically derived from the weather upstream.
type Setting string

// Supported settings.
const (
	SettingAny     Setting = ""
	SettingIndoor  Setting = "indoor"
	SettingOutdoor Setting = "outdoor"
)

// Preferences steer selection without re-ranking.
type Preferences struct {
	Cuisines        []string
	ActivityTypes   []string
	Setting         Setting
	PreferNovel     bool    // favor hidden gems and new discoveries
	MaxPairDistance float64 // miles between restaurant and activity, 0 means unlimited
}

// Criteria selects how a Plan is built.
type Criteria struct {
	Mode        model.PlanMode
	Center      model.Coordinate
	Preferences Preferences
}

var (
	outdoorWords = []string{"park", "garden", "beach", "trail", "hike", "outdoor", "patio", "rooftop", "golf", "zoo", "pier"}
	indoorWords  = []string{"museum", "theater", "theatre", "cinema", "bowling", "gallery", "escape", "arcade", "aquarium", "bar", "lounge", "club"}
)

// Builder constructs immutable plans.
type Builder struct {
	newID func() string
}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{newID: func() string { return uuid.NewString() }}
}

// Build picks the first entry of each list that satisfies the preferences,
// falling back to index 0.
func (b *Builder) Build(restaurants, activities []model.ScoredVenue, c Criteria) (model.Plan, error) {
	ri, ai, err := b.resolveMode(c.Mode, restaurants, activities)
	if err != nil {
		return model.Plan{}, err
	}
	if ri >= 0 {
		ri = firstMatch(restaurants, func(v model.ScoredVenue) bool {
			return matchesCuisine(v, c.Preferences) && matchesNovelty(v, c.Preferences)
		})
	}
	if ai >= 0 {
		var anchor *model.ScoredVenue
		if ri >= 0 {
			anchor = &restaurants[ri]
		}
		ai = firstMatch(activities, func(v model.ScoredVenue) bool {
			return matchesActivity(v, c.Preferences) &&
				matchesSetting(v, c.Preferences.Setting) &&
				matchesNovelty(v, c.Preferences) &&
				withinPairDistance(anchor, v, c.Preferences.MaxPairDistance)
		})
	}
	return b.assemble(c, restaurants, activities, ri, ai), nil
}

// BuildFromIndices builds a plan from explicit caller-chosen indices, as used
// when swapping to the next entry of an already ranked list. An index is
// ignored for a half the mode does not include.
func (b *Builder) BuildFromIndices(restaurants, activities []model.ScoredVenue, c Criteria, restaurantIdx, activityIdx int) (model.Plan, error) {
	ri, ai, err := b.resolveMode(c.Mode, restaurants, activities)
	if err != nil {
		return model.Plan{}, err
	}
	if ri >= 0 {
		if restaurantIdx < 0 || restaurantIdx >= len(restaurants) {
			return model.Plan{}, fmt.Errorf("%w: restaurant %d of %d", ErrIndexOutOfRange, restaurantIdx, len(restaurants))
		}
		ri = restaurantIdx
	}
	if ai >= 0 {
		if activityIdx < 0 || activityIdx >= len(activities) {
			return model.Plan{}, fmt.Errorf("%w: activity %d of %d", ErrIndexOutOfRange, activityIdx, len(activities))
		}
		ai = activityIdx
	}
	return b.assemble(c, restaurants, activities, ri, ai), nil
}

// resolveMode returns 0 for each half to fill and -1 for each half to skip.
func (b *Builder) resolveMode(mode model.PlanMode, restaurants, activities []model.ScoredVenue) (int, int, error) {
	ri, ai := -1, -1
	switch mode {
	case model.PlanBoth, "":
		if len(restaurants) > 0 {
			ri = 0
		}
		if len(activities) > 0 {
			ai = 0
		}
	case model.PlanRestaurantOnly:
		if len(restaurants) > 0 {
			ri = 0
		}
	case model.PlanActivityOnly:
		if len(activities) > 0 {
			ai = 0
		}
	default:
		return -1, -1, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if ri < 0 && ai < 0 {
		return -1, -1, ErrEmptyPlan
	}
	return ri, ai, nil
}

func (b *Builder) assemble(c Criteria, restaurants, activities []model.ScoredVenue, ri, ai int) model.Plan {
	mode := c.Mode
	if mode == "" {
		mode = model.PlanBoth
	}
	p := model.Plan{ID: b.newID(), Mode: mode, RestaurantIndex: ri, ActivityIndex: ai}
	if ri >= 0 {
		r := restaurants[ri]
		p.Restaurant = &r
		p.ToRestaurant = miles(geo.HaversineMiles(c.Center, r.Location))
	}
	if ai >= 0 {
		a := activities[ai]
		p.Activity = &a
		p.ToActivity = miles(geo.HaversineMiles(c.Center, a.Location))
	}
	if p.Restaurant != nil && p.Activity != nil {
		p.Between = miles(geo.HaversineMiles(p.Restaurant.Location, p.Activity.Location))
	}
	return p
}

func firstMatch(list []model.ScoredVenue, ok func(model.ScoredVenue) bool) int {
	for i, v := range list {
		if ok(v) {
			return i
		}
	}
	return 0
}

func matchesCuisine(v model.ScoredVenue, p Preferences) bool {
	return len(p.Cuisines) == 0 || mentionsAny(v.Venue, p.Cuisines)
}

func matchesActivity(v model.ScoredVenue, p Preferences) bool {
	return len(p.ActivityTypes) == 0 || mentionsAny(v.Venue, p.ActivityTypes)
}

func matchesNovelty(v model.ScoredVenue, p Preferences) bool {
	return !p.PreferNovel || v.HiddenGem || v.NewDiscovery
}

func matchesSetting(v model.ScoredVenue, s Setting) bool {
	switch s {
	case SettingIndoor:
		return mentionsAny(v.Venue, indoorWords)
	case SettingOutdoor:
		return mentionsAny(v.Venue, outdoorWords)
	default:
		return true
	}
}

func withinPairDistance(anchor *model.ScoredVenue, v model.ScoredVenue, limit float64) bool {
	if anchor == nil || limit <= 0 {
		return true
	}
	return geo.HaversineMiles(anchor.Location, v.Location) <= limit
}

func mentionsAny(v model.Venue, words []string) bool {
	text := strings.ToLower(v.Name + " " + strings.Join(v.Types, " "))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" && strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func miles(d float64) *float64 { return &d }
