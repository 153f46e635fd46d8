package probe

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/datenight/planner/pkg/logger"
)

// check is a named verification against a running service.
type check struct {
	name string
	run  func(ctx context.Context, client *HTTPClient, config *Config, q Query, base SearchResponse) error
}

var checks = []check{
	{name: "uniqueIDs", run: checkUniqueIDs},
	{name: "seedReproducible", run: checkSeedReproducible},
	{name: "surpriseLimit", run: checkSurpriseLimit},
	{name: "exclusions", run: checkExclusions},
}

// verifyResults runs every check against the first successful, non-empty
// result. Failures are counted and reported together.
func verifyResults(ctx context.Context, config *Config, results []Result, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	sample, ok := firstNonEmpty(results)
	if !ok {
		return fmt.Errorf("no successful non-empty results to verify")
	}

	client := newHTTPClient(config.Timeout)
	var failures []string
	for _, c := range checks {
		if err := c.run(ctx, client, config, sample.Query, sample.Response); err != nil {
			stats.ChecksFailed++
			failures = append(failures, c.name+": "+err.Error())
			logger.Get().Warn(ctx, "check failed", logger.String("check", c.name), logger.Error(err))
			continue
		}
		stats.ChecksPassed++
		logger.Get().Info(ctx, "check passed", logger.String("check", c.name))
	}

	displayTopVenues(ctx, sample, config.Verbose)

	if len(failures) > 0 {
		return fmt.Errorf("%d checks failed: %v", len(failures), failures)
	}
	return nil
}

func firstNonEmpty(results []Result) (Result, bool) {
	for _, r := range results {
		if r.Error == "" && r.Status == StatusOK && len(r.Response.Items) > 0 {
			return r, true
		}
	}
	return Result{}, false
}

func checkUniqueIDs(_ context.Context, _ *HTTPClient, _ *Config, _ Query, base SearchResponse) error {
	return uniqueIDs(base.Items)
}

func checkSeedReproducible(ctx context.Context, client *HTTPClient, config *Config, q Query, _ SearchResponse) error {
	extra := url.Values{"seed": {strconv.FormatInt(config.Seed, 10)}}
	_, first, err := client.search(ctx, config.BaseURL, q, extra)
	if err != nil {
		return err
	}
	_, second, err := client.search(ctx, config.BaseURL, q, extra)
	if err != nil {
		return err
	}
	return sameOrder(first.Items, second.Items)
}

func checkSurpriseLimit(ctx context.Context, client *HTTPClient, config *Config, q Query, _ SearchResponse) error {
	_, resp, err := client.search(ctx, config.BaseURL, q, url.Values{"surpriseMe": {"true"}})
	if err != nil {
		return err
	}
	if len(resp.Items) > config.SurpriseLimit {
		return fmt.Errorf("surprise returned %d items, limit is %d", len(resp.Items), config.SurpriseLimit)
	}
	return nil
}

func checkExclusions(ctx context.Context, client *HTTPClient, config *Config, q Query, base SearchResponse) error {
	excluded := base.Items[0].ID
	_, resp, err := client.search(ctx, config.BaseURL, q, url.Values{"excludePlaceIds": {excluded}})
	if err != nil {
		return err
	}
	for _, v := range resp.Items {
		if v.ID == excluded {
			return fmt.Errorf("excluded place %s was returned", excluded)
		}
	}
	return nil
}

// uniqueIDs reports the first ID that appears twice.
func uniqueIDs(items []Venue) error {
	seen := make(map[string]struct{}, len(items))
	for _, v := range items {
		if _, ok := seen[v.ID]; ok {
			return fmt.Errorf("duplicate place %s", v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

// sameOrder reports whether two result lists carry the same IDs in order.
func sameOrder(a, b []Venue) error {
	if len(a) != len(b) {
		return fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			return fmt.Errorf("position %d differs: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
	return nil
}

// displayTopVenues logs the head of the sample result.
func displayTopVenues(ctx context.Context, sample Result, verbose bool) {
	topN := 5
	if verbose {
		topN = 10
	}
	if len(sample.Response.Items) < topN {
		topN = len(sample.Response.Items)
	}
	for i := 0; i < topN; i++ {
		v := sample.Response.Items[i]
		logger.Get().Info(ctx, "top venue",
			logger.Int("position", i+1),
			logger.String("name", v.Name),
			logger.String("provider", v.Provider),
			logger.Float64("rating", v.Rating),
			logger.Float64("distanceMiles", v.Distance))
	}
	if verbose {
		logger.Get().Info(ctx, "provider stats", logger.Any("providerStats", sample.Response.ProviderStats),
			logger.Any("excluded", sample.Response.ExcludedCountsByReason))
	}
}
