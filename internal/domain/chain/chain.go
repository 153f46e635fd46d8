// Package chain classifies venues as chain members from their name and
// optional provider-supplied chain metadata.
package chain

import "strings"

// Tier is the chain classification of a venue.
type Tier int

// Chain tiers, from no signal to a generic chain signal.
const (
	None Tier = iota
	FastFood
	CasualDining
	FineDining
	Generic
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	switch t {
	case FastFood:
		return "fast_food"
	case CasualDining:
		return "casual_dining"
	case FineDining:
		return "fine_dining"
	case Generic:
		return "generic"
	default:
		return "none"
	}
}

// IsChain reports whether any chain signal was detected.
func (t Tier) IsChain() bool { return t != None }

// Penalty returns the multiplicative scoring factor for the tier.
func (t Tier) Penalty() float64 {
	switch t {
	case FastFood:
		return 0.05
	case CasualDining:
		return 0.15
	case FineDining:
		return 0.85
	case Generic:
		return 0.3
	default:
		return 1.0
	}
}

// Recognized chain name fragments, matched case-insensitively as substrings.
var (
	fineDining = []string{
		"ruth's chris", "morton's", "capital grille", "del frisco", "fleming's",
		"eddie v's", "mastro's", "nobu", "stk", "the palm", "smith & wollensky",
		"ocean prime", "perry's steakhouse",
	}
	fastFood = []string{
		"mcdonald", "burger king", "wendy's", "taco bell", "kfc", "subway",
		"chick-fil-a", "popeyes", "jack in the box", "carl's jr", "sonic drive",
		"arby's", "domino's", "pizza hut", "little caesars", "papa john",
		"panda express", "chipotle", "five guys", "in-n-out", "del taco",
		"dairy queen", "white castle", "jersey mike", "jimmy john", "wingstop",
		"starbucks", "dunkin",
	}
	casualDining = []string{
		"applebee", "chili's", "olive garden", "red lobster", "outback",
		"tgi fridays", "buffalo wild wings", "denny's", "ihop", "cheesecake factory",
		"red robin", "p.f. chang", "texas roadhouse", "cracker barrel",
		"longhorn steakhouse", "ruby tuesday", "bj's restaurant", "california pizza kitchen",
		"hooters", "bob evans", "waffle house", "panera", "dave & buster",
	}
)

// Detect returns the chain tier for a venue name and its provider chain
// metadata. Name lists are checked fine dining first so that upscale chains
// are not mistaken for casual ones. Non-empty metadata that matches no list
// yields Generic.
func Detect(name string, chains []string) Tier {
	n := strings.ToLower(name)
	candidates := make([]string, 0, len(chains)+1)
	candidates = append(candidates, n)
	for _, c := range chains {
		if c = strings.TrimSpace(c); c != "" {
			candidates = append(candidates, strings.ToLower(c))
		}
	}

	for _, list := range []struct {
		names []string
		tier  Tier
	}{
		{fineDining, FineDining},
		{fastFood, FastFood},
		{casualDining, CasualDining},
	} {
		for _, c := range candidates {
			if containsAny(c, list.names) {
				return list.tier
			}
		}
	}

	if len(candidates) > 1 {
		return Generic
	}
	return None
}

// containsAny reports whether any fragment appears in s as whole words. A
// trailing possessive on the last word still matches, so "applebee" finds
// "Applebee's".
func containsAny(s string, fragments []string) bool {
	joined := " " + strings.Join(words(s), " ") + " "
	for _, f := range fragments {
		w := strings.Join(words(f), " ")
		if strings.Contains(joined, " "+w+" ") || strings.Contains(joined, " "+w+"'s ") {
			return true
		}
	}
	return false
}

// words lowercases s and splits it on punctuation that never belongs to a
// chain name, dropping trailing apostrophes such as in "Dunkin'".
func words(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "’", "'")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', ',', '.', '-', '(', ')', '/', '#', ':', '|':
			return true
		}
		return false
	})
	for i, f := range fields {
		fields[i] = strings.TrimRight(f, "'")
	}
	return fields
}
