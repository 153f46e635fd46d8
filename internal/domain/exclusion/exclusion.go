// Package exclusion holds the provider-agnostic rules adapters apply to drop
// misclassified venues before they reach the aggregator.
package exclusion

import (
	"strings"

	"github.com/datenight/planner/internal/domain/model"
)

// Reason names why a venue was excluded.
type Reason string

// Exclusion reasons.
const (
	ReasonRetail          Reason = "retail"
	ReasonTraditionalGolf Reason = "traditionalGolf"
	ReasonLiquorStore     Reason = "liquorStore"
	ReasonCraftStore      Reason = "craftStore"
	ReasonGhostListing    Reason = "ghostListing"
)

// Rule decides whether a venue returned for term should be dropped.
type Rule interface {
	Name() Reason
	Exclude(term string, v model.Venue) bool
}

// Rules is an ordered rule set.
type Rules []Rule

// Apply filters venues returned for term and counts drops per reason.
func (rs Rules) Apply(term string, venues []model.Venue) ([]model.Venue, map[Reason]int) {
	dropped := make(map[Reason]int)
	kept := venues[:0:0]
	for _, v := range venues {
		if r := rs.match(term, v); r != "" {
			dropped[r]++
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}

func (rs Rules) match(term string, v model.Venue) Reason {
	for _, r := range rs {
		if r.Exclude(term, v) {
			return r.Name()
		}
	}
	return ""
}

// RestaurantRules drops retail and grocery places misclassified as restaurants.
func RestaurantRules() Rules {
	return Rules{retailRule{}}
}

// ActivityRules holds the keyword-scoped allow/deny rules for activity searches.
func ActivityRules() Rules {
	return Rules{golfRule{}, liquorRule{}, craftRule{}}
}

// GhostListings drops premium-data venues with no reviews at all.
func GhostListings() Rule { return ghostRule{} }

// NormalizeType turns a provider type token such as "wine_bar" into a shared label.
func NormalizeType(t string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(t), "_", " "))
}

var (
	retailTypes = []string{
		"grocery or supermarket", "supermarket", "convenience store", "department store",
		"gas station", "pharmacy", "drugstore", "warehouse store", "discount store",
		"grocery store", "shopping mall",
	}
	retailNames = []string{
		"walmart", "costco", "target", "7-eleven", "kroger", "safeway", "whole foods",
		"trader joe", "albertsons", "ralphs", "vons", "sam's club", "cvs", "walgreens",
		"rite aid", "dollar general", "family dollar", "circle k", "ampm", "aldi",
	}

	golfAllowNames = []string{"topgolf", "mini", "putt", "drive shack", "popstroke"}
	golfTypes      = []string{"golf course", "golf club", "country club"}

	liquorTypes = []string{"liquor store", "beer wine and spirits store"}
	liquorNames = []string{"liquor", "bevmo", "total wine", "spirits shop", "wine & spirits"}

	craftTypes = []string{"craft store", "arts and crafts store", "hobby store"}
	craftNames = []string{"michaels", "hobby lobby", "joann", "jo-ann"}
)

type retailRule struct{}

func (retailRule) Name() Reason { return ReasonRetail }

func (retailRule) Exclude(_ string, v model.Venue) bool {
	return hasAnyType(v, retailTypes) || nameHasWord(v.Name, retailNames)
}

type golfRule struct{}

func (golfRule) Name() Reason { return ReasonTraditionalGolf }

// Exclude drops traditional courses when the user is looking for
// entertainment golf.
func (golfRule) Exclude(term string, v model.Venue) bool {
	if !strings.Contains(strings.ToLower(term), "golf") {
		return false
	}
	name := strings.ToLower(v.Name)
	for _, allow := range golfAllowNames {
		if strings.Contains(name, allow) {
			return false
		}
	}
	if hasAnyType(v, golfTypes) {
		return true
	}
	return strings.Contains(name, "golf course") || strings.Contains(name, "country club")
}

type liquorRule struct{}

func (liquorRule) Name() Reason { return ReasonLiquorStore }

func (liquorRule) Exclude(term string, v model.Venue) bool {
	t := strings.ToLower(term)
	if !strings.Contains(t, "brew") && !strings.Contains(t, "wine") && !strings.Contains(t, "winery") {
		return false
	}
	return hasAnyType(v, liquorTypes) || containsAny(strings.ToLower(v.Name), liquorNames)
}

type craftRule struct{}

func (craftRule) Name() Reason { return ReasonCraftStore }

func (craftRule) Exclude(term string, v model.Venue) bool {
	t := strings.ToLower(term)
	if !strings.Contains(t, "art") && !strings.Contains(t, "gallery") {
		return false
	}
	return hasAnyType(v, craftTypes) || containsAny(strings.ToLower(v.Name), craftNames)
}

type ghostRule struct{}

func (ghostRule) Name() Reason { return ReasonGhostListing }

func (ghostRule) Exclude(_ string, v model.Venue) bool {
	return v.HasPremiumData && v.ReviewCount == 0
}

func hasAnyType(v model.Venue, labels []string) bool {
	for _, l := range labels {
		if v.HasType(l) {
			return true
		}
	}
	return false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// nameHasWord matches whole words so that "Target" does not hit "Targeted Tacos".
func nameHasWord(name string, words []string) bool {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == ' ' || r == ',' || r == '(' || r == ')' || r == '/' || r == '#'
	})
	joined := " " + strings.Join(fields, " ") + " "
	for _, w := range words {
		if strings.Contains(joined, " "+w+" ") || strings.Contains(joined, " "+w+"'s ") {
			return true
		}
	}
	return false
}
