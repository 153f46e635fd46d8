package dedupe

// Option applies a configuration option to the Merger.
type Option func(*spatialMerger)

// WithThresholdMiles sets the distance under which two venues may be the same place.
func WithThresholdMiles(miles float64) Option {
	return func(m *spatialMerger) {
		if miles > 0 {
			m.thresholdMiles = miles
		}
	}
}

// WithPrefixLength sets how many leading characters of one name must appear
// in the other for a fuzzy name match.
func WithPrefixLength(n int) Option {
	return func(m *spatialMerger) {
		if n > 0 {
			m.prefixLen = n
		}
	}
}
