package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/datenight/planner/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete probe and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
	}
	if config.SurpriseLimit <= 0 {
		config.SurpriseLimit = DefaultSurpriseLimit
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}

	logger.Get().Info(ctx, "starting planner probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("searches", config.NumSearches),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Float64("lat", config.Lat),
		logger.Float64("lng", config.Lng),
		logger.Float64("radiusMiles", config.RadiusMiles))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate queries
	queries, err := generateQueries(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("query generation failed: %w", err)
	}

	// Step 3: Submit searches concurrently
	results := runSearches(ctx, config, queries, stats)

	// Step 4: Verify ordering guarantees
	verifyErr := verifyResults(ctx, config, results, stats)

	// Step 5: Save results to file
	if config.OutputFile != "" {
		if err := saveResultsToFile(ctx, config.OutputFile, results); err != nil {
			logger.Get().Warn(ctx, "failed to save results to file", logger.Error(err))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	if verifyErr != nil {
		return stats, fmt.Errorf("result verification failed: %w", verifyErr)
	}
	logger.Get().Info(ctx, "probe completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// The service answers /healthz with Prometheus metrics
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveResultsToFile writes the results as an indented JSON array.
func saveResultsToFile(ctx context.Context, filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "results saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final probe statistics.
func displayFinalStats(stats *Stats) {
	var successRate, searchesPerSecond float64

	if stats.SearchesSubmitted > 0 {
		successRate = float64(stats.SearchesSuccessful) / float64(stats.SearchesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		searchesPerSecond = float64(stats.SearchesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("searchesGenerated", stats.SearchesGenerated),
		logger.Int("searchesSubmitted", stats.SearchesSubmitted),
		logger.Int("searchesSuccessful", stats.SearchesSuccessful),
		logger.Int("searchesFailed", stats.SearchesFailed),
		logger.Int("emptyResults", stats.EmptyResults),
		logger.Int("itemsReturned", stats.ItemsReturned),
		logger.Int("checksPassed", stats.ChecksPassed),
		logger.Int("checksFailed", stats.ChecksFailed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("searchesPerSecond", searchesPerSecond))
}
