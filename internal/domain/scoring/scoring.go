// Package scoring computes the uniqueness score, badges and date-worthiness
// of a venue.
package scoring

import (
	"math"
	"strings"

	"github.com/datenight/planner/internal/domain/chain"
	"github.com/datenight/planner/internal/domain/model"
)

// Score bounds and fixed values.
const (
	MinScore          = 0.1
	MaxScore          = 3.0
	neutralScore      = 1.0
	noDataChainScore  = 0.3
	uniqueTypeFactor  = 1.3
	hiddenGemExponent = 1.5
	popularBoost      = 1.5
	popularChainBoost = 3.0
	popularReviewMark = 1000
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithUniqueTypes replaces the curated set of distinctive venue types.
func WithUniqueTypes(labels ...string) Option {
	return func(s *Scorer) {
		if len(labels) == 0 {
			return
		}
		s.uniqueTypes = make(map[string]struct{}, len(labels))
		for _, l := range labels {
			s.uniqueTypes[normalize(l)] = struct{}{}
		}
	}
}

// WithChainDetector overrides chain detection.
func WithChainDetector(fn func(name string, chains []string) chain.Tier) Option {
	return func(s *Scorer) {
		if fn != nil {
			s.detect = fn
		}
	}
}

// Input abstracts the venue fields needed for scoring.
type Input struct {
	Venue   model.Venue
	Novelty model.NoveltyMode
}

// Result contains the computed score and badges for a venue.
type Result struct {
	Score  float64
	Chain  chain.Tier
	Badges model.Badges
}

// Scorer is stateless after construction and safe for concurrent use.
type Scorer struct {
	uniqueTypes map[string]struct{}
	detect      func(name string, chains []string) chain.Tier
}

var defaultUniqueTypes = []string{
	"speakeasy", "wine bar", "jazz club", "art gallery", "rooftop bar",
	"food truck", "pop-up", "wine tasting", "brewery", "winery", "distillery",
}

// NewScorer creates a new scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{detect: chain.Detect}
	WithUniqueTypes(defaultUniqueTypes...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the uniqueness score and badges for in.
func (s *Scorer) Score(in Input) Result {
	v := in.Venue
	tier := s.detect(v.Name, v.Chains)

	if !v.HasPremiumData {
		// Only provider metadata counts here; a name match alone is not
		// enough evidence for a venue we know nothing else about.
		if len(v.Chains) > 0 && tier.IsChain() {
			return Result{Score: noDataChainScore, Chain: tier}
		}
		return Result{Score: neutralScore, Chain: tier}
	}

	score := neutralScore *
		reviewFactor(v.ReviewCount) *
		tier.Penalty() *
		ratingFactor(v.Rating) *
		s.typeFactor(v.Types)

	switch in.Novelty {
	case model.NoveltyHiddenGems:
		score = math.Pow(score, hiddenGemExponent)
	case model.NoveltyPopular:
		if v.ReviewCount > popularReviewMark {
			score *= popularBoost
		}
		if tier.IsChain() {
			score *= popularChainBoost
		}
	}

	return Result{
		Score:  clamp(score),
		Chain:  tier,
		Badges: badges(v, tier),
	}
}

// Apply scores v and returns the ScoredVenue.
func (s *Scorer) Apply(v model.Venue, mode model.NoveltyMode) model.ScoredVenue {
	r := s.Score(Input{Venue: v, Novelty: mode})
	return model.ScoredVenue{Venue: v, Badges: r.Badges, UniquenessScore: r.Score}
}

// reviewFactor is the non-monotonic sweet-spot curve over review volume.
func reviewFactor(n int) float64 {
	switch {
	case n < 20:
		return 0.5
	case n < 50:
		return 0.8
	case n <= 300:
		return 1.8
	case n <= 800:
		return 1.3
	case n <= 2000:
		return 1.0
	default:
		return 0.6
	}
}

func ratingFactor(r float64) float64 {
	switch {
	case r >= 4.7:
		return 1.4
	case r >= 4.5:
		return 1.2
	case r >= 4.0:
		return 1.0
	case r >= 3.5:
		return 0.7
	default:
		return 0.3
	}
}

func (s *Scorer) typeFactor(types []string) float64 {
	for _, t := range types {
		if _, ok := s.uniqueTypes[normalize(t)]; ok {
			return uniqueTypeFactor
		}
	}
	return 1.0
}

func badges(v model.Venue, tier chain.Tier) model.Badges {
	n, r := v.ReviewCount, v.Rating
	return model.Badges{
		HiddenGem:     n >= 50 && n <= 500 && !tier.IsChain() && r >= 4.5,
		NewDiscovery:  n < 100 && r >= 4.0,
		LocalFavorite: !tier.IsChain() && r >= 4.5 && n > 100 && n < 2000,
	}
}

func clamp(x float64) float64 {
	if math.IsNaN(x) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, x))
}

func normalize(label string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(label), "_", " "))
}
