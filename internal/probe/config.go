package probe

import "time"

// Config holds configuration for a probe run
type Config struct {
	BaseURL       string        // Base URL of the planner service
	NumSearches   int           // Number of searches to generate
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	Lat           float64       // Probe center latitude
	Lng           float64       // Probe center longitude
	RadiusMiles   float64       // Search radius sent with every query
	SurpriseLimit int           // Expected cap on surprise-mode results
	Seed          int64         // Seed used for the reproducibility check
	OutputFile    string        // Output file for search results
	LogFile       string        // Log file for probe output
	Verbose       bool          // Enable verbose logging
}

// Query is one generated search
type Query struct {
	Kind        string  `json:"kind"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	RadiusMiles float64 `json:"radiusMiles"`
	Keyword     string  `json:"keyword,omitempty"`
	Cuisine     string  `json:"cuisine,omitempty"`
	NoveltyMode string  `json:"noveltyMode,omitempty"`
}

// Venue mirrors the fields of a search item the probe inspects
type Venue struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Provider        string  `json:"provider"`
	Rating          float64 `json:"rating"`
	Distance        float64 `json:"distance"`
	UniquenessScore float64 `json:"uniquenessScore"`
}

// SearchResponse mirrors the search endpoint body
type SearchResponse struct {
	Items                  []Venue        `json:"items"`
	ProviderStats          map[string]int `json:"providerStats"`
	ExcludedCountsByReason map[string]int `json:"excludedCountsByReason"`
	ForceFresh             bool           `json:"forceFresh"`
	Seed                   *int64         `json:"seed,omitempty"`
}

// Result pairs a query with its outcome
type Result struct {
	Query    Query          `json:"query"`
	Status   int            `json:"status"`
	Response SearchResponse `json:"response"`
	Error    string         `json:"error,omitempty"`
}

// Stats holds probe statistics
type Stats struct {
	SearchesGenerated  int
	SearchesSubmitted  int
	SearchesSuccessful int
	SearchesFailed     int
	EmptyResults       int
	ItemsReturned      int
	ChecksPassed       int
	ChecksFailed       int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
