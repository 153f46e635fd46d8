package scoring

import (
	"math"
	"strings"

	"github.com/datenight/planner/internal/domain/model"
)

const (
	romanticBonus    = 10.0
	romanticBonusCap = 30.0
	familyPenalty    = 15.0
	reviewVolumeCap  = 1000
	reviewVolumeStep = 50.0
)

var (
	romanticWords = []string{
		"wine", "jazz", "rooftop", "candle", "lounge", "speakeasy", "gallery",
		"theater", "theatre", "observatory", "garden", "cocktail", "tasting",
		"sunset", "piano", "dance", "comedy", "museum",
	}
	familyWords = []string{
		"kids", "kid's", "children", "family fun", "chuck e", "trampoline",
		"playground", "daycare", "birthday party",
	}
)

// DateWorthiness estimates how suitable a venue is for a date on a 0..100
// scale from its rating, review volume and name/type keywords.
func DateWorthiness(v model.Venue) float64 {
	score := v.Rating * 10
	score += float64(min(v.ReviewCount, reviewVolumeCap)) / reviewVolumeStep

	text := strings.ToLower(v.Name + " " + strings.Join(v.Types, " "))
	bonus := 0.0
	for _, w := range romanticWords {
		if strings.Contains(text, w) {
			bonus += romanticBonus
		}
	}
	score += math.Min(bonus, romanticBonusCap)

	for _, w := range familyWords {
		if strings.Contains(text, w) {
			score -= familyPenalty
			break
		}
	}
	return math.Max(0, math.Min(100, score))
}
