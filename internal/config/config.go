// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and match the koanf tags below.
// - New returns the defaults; Load layers file and environment on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"

	"github.com/datenight/planner/internal/adapters/cache"
	"github.com/datenight/planner/internal/domain/quality"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ProviderTimeoutMS bounds every individual provider call.
	ProviderTimeoutMS int `koanf:"provider_timeout_ms"`

	// Provider credentials. An empty credential disables the provider.
	GoogleAPIKey       string `koanf:"google_api_key"`
	GoogleBaseURL      string `koanf:"google_base_url"`
	FoursquareAPIKey   string `koanf:"foursquare_api_key"`
	FoursquareBaseURL  string `koanf:"foursquare_base_url"`
	YelpAPIKey         string `koanf:"yelp_api_key"`
	TicketmasterAPIKey string `koanf:"ticketmaster_api_key"`
	EventbriteToken    string `koanf:"eventbrite_token"`

	// CacheBackend is one of none, memory or redis.
	CacheBackend    string `koanf:"cache_backend"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`

	// SurpriseLimit caps surprise-me results.
	SurpriseLimit int `koanf:"surprise_limit"`

	// MaxExcludeIDs caps excludePlaceIds per request.
	MaxExcludeIDs int `koanf:"max_exclude_ids"`

	// Quality floors, flat keys such as restaurant_min_rating.
	quality.Floors `koanf:",squash"`

	// MaxPairDistanceMiles is the default restaurant to activity distance cap
	// used by the plan builder. Zero disables the cap.
	MaxPairDistanceMiles float64 `koanf:"max_pair_distance_miles"`

	// Metric naming. Labels are constant labels attached to every series and
	// are set from the config file.
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		ProviderTimeoutMS:    8000,
		GoogleBaseURL:        "https://maps.googleapis.com",
		FoursquareBaseURL:    "https://api.foursquare.com",
		CacheBackend:         cache.BackendMemory,
		CacheTTLSeconds:      900,
		RedisAddr:            "localhost:6379",
		SurpriseLimit:        15,
		MaxExcludeIDs:        100,
		Floors:               quality.DefaultFloors(),
		MaxPairDistanceMiles: 0,
		MetricsNamespace:     "datenight",
		MetricsSubsystem:     "planner",
	}
}

// ProviderTimeout returns ProviderTimeoutMS as a duration.
func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
