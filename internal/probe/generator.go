package probe

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/datenight/planner/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	milesPerDegreeLat  = 69.0
	jitterFraction     = 0.5
)

var (
	cuisines      = []string{"italian", "japanese", "mexican", "thai", "french", "korean"}
	activityWords = []string{"jazz bar", "bowling", "museum", "comedy club", "escape room", "wine tasting"}
	noveltyModes  = []string{"", "popular", "balanced", "hidden_gems"}
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pick(list []string) string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	return list[n.Int64()]
}

// generateQueries creates the configured number of searches scattered around
// the probe center. Even indices are restaurant searches, odd are activities.
func generateQueries(ctx context.Context, config *Config, stats *Stats) ([]Query, error) {
	logger.Get().Info(ctx, "generating search queries", logger.Int("numSearches", config.NumSearches))

	queries := make([]Query, config.NumSearches)
	for i := range queries {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during query generation: %w", err)
		}
		queries[i] = generateSingleQuery(i, config)
	}

	stats.SearchesGenerated = len(queries)
	logger.Get().Info(ctx, "generated queries successfully", logger.Int("count", len(queries)))
	return queries, nil
}

// generateSingleQuery jitters the center by up to half the radius.
func generateSingleQuery(index int, config *Config) Query {
	lat, lng := jitter(config.Lat, config.Lng, config.RadiusMiles*jitterFraction)

	q := Query{
		Lat:         lat,
		Lng:         lng,
		RadiusMiles: config.RadiusMiles,
		NoveltyMode: pick(noveltyModes),
	}
	if index%2 == 0 {
		q.Kind = KindRestaurants
		q.Cuisine = pick(cuisines)
	} else {
		q.Kind = KindActivities
		q.Keyword = pick(activityWords)
	}
	return q
}

// jitter returns a point within maxMiles of (lat, lng).
func jitter(lat, lng, maxMiles float64) (float64, float64) {
	dist := getRandomFloat() * maxMiles
	bearing := getRandomFloat() * 2 * math.Pi

	dLat := dist * math.Cos(bearing) / milesPerDegreeLat
	milesPerDegreeLng := milesPerDegreeLat * math.Cos(lat*math.Pi/180)
	if milesPerDegreeLng < 1e-9 {
		return lat + dLat, lng
	}
	dLng := dist * math.Sin(bearing) / milesPerDegreeLng
	return lat + dLat, lng + dLng
}
