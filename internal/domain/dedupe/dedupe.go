// Package dedupe links records of the same real-world place returned by
// different providers.
package dedupe

import (
	"strings"

	"github.com/datenight/planner/internal/domain/geo"
	"github.com/datenight/planner/internal/domain/model"
)

// Default linkage parameters.
const (
	defaultThresholdMiles = 0.03 // roughly 50 meters
	defaultPrefixLen      = 10
)

// Merger combines provider result lists into one list with a single record
// per real-world place.
type Merger interface {
	// Merge walks lists in order. The first-seen record of a place is kept
	// unless a later duplicate is strictly more authoritative. It returns the
	// merged venues and the number of duplicates folded away.
	Merge(lists [][]model.Venue) ([]model.Venue, int)
}

// spatialMerger matches on great-circle distance plus exact or prefix name equality.
type spatialMerger struct {
	thresholdMiles float64
	prefixLen      int
}

// NewMerger creates a Merger with configuration options.
func NewMerger(opts ...Option) Merger {
	m := &spatialMerger{
		thresholdMiles: defaultThresholdMiles,
		prefixLen:      defaultPrefixLen,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge implements Merger.
func (m *spatialMerger) Merge(lists [][]model.Venue) ([]model.Venue, int) {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	merged := make([]model.Venue, 0, total)
	duplicates := 0
	for _, list := range lists {
		for _, v := range list {
			idx := m.find(merged, v)
			if idx < 0 {
				merged = append(merged, v)
				continue
			}
			duplicates++
			if better(v, merged[idx]) {
				merged[idx] = v
			}
		}
	}
	return merged, duplicates
}

// Same reports whether a and b describe the same place under the merger's rules.
func (m *spatialMerger) Same(a, b model.Venue) bool {
	if geo.HaversineMiles(a.Location, b.Location) >= m.thresholdMiles {
		return false
	}
	if a.Name == b.Name {
		return true
	}
	return m.prefixMatch(a.Name, b.Name)
}

func (m *spatialMerger) find(kept []model.Venue, v model.Venue) int {
	for i := range kept {
		if m.Same(kept[i], v) {
			return i
		}
	}
	return -1
}

// prefixMatch reports whether either lowercased name contains the first
// prefixLen characters of the other.
func (m *spatialMerger) prefixMatch(a, b string) bool {
	la := strings.ToLower(strings.TrimSpace(a))
	lb := strings.ToLower(strings.TrimSpace(b))
	if la == "" || lb == "" {
		return false
	}
	return strings.Contains(la, prefix(lb, m.prefixLen)) || strings.Contains(lb, prefix(la, m.prefixLen))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// better reports whether candidate should replace kept: strictly more
// reviews, or equal reviews and a strictly higher rating.
func better(candidate, kept model.Venue) bool {
	if candidate.ReviewCount != kept.ReviewCount {
		return candidate.ReviewCount > kept.ReviewCount
	}
	return candidate.Rating > kept.Rating
}
