package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/datenight/planner/internal/probe"
)

// Default configuration constants.
const (
	defaultNumSearches  = 200
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultProbeTimeout = 10 * time.Minute
	defaultLat          = 34.0522
	defaultLng          = -118.2437
	defaultRadiusMiles  = 5
)

func main() {
	var (
		baseURL       = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSearches   = flag.Int("searches", defaultNumSearches, "Number of searches to run")
		workers       = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout       = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		lat           = flag.Float64("lat", defaultLat, "Center latitude")
		lng           = flag.Float64("lng", defaultLng, "Center longitude")
		radius        = flag.Float64("radius", defaultRadiusMiles, "Search radius in miles")
		surpriseLimit = flag.Int("surprise-limit", probe.DefaultSurpriseLimit, "Expected surprise result cap")
		seed          = flag.Int64("seed", probe.DefaultSeed, "Seed for the reproducibility check")
		outputFile    = flag.String("output", "", "Output file for search results")
		logFile       = flag.String("log", "", "Log file for probe output (default: probe_log_TIMESTAMP.log)")
		verbose       = flag.Bool("verbose", false, "Enable verbose logging")
		help          = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	closer, err := probe.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()

	config := &probe.Config{
		BaseURL:       *baseURL,
		NumSearches:   *numSearches,
		Workers:       *workers,
		Timeout:       *timeout,
		Lat:           *lat,
		Lng:           *lng,
		RadiusMiles:   *radius,
		SurpriseLimit: *surpriseLimit,
		Seed:          *seed,
		OutputFile:    *outputFile,
		LogFile:       *logFile,
		Verbose:       *verbose,
	}

	if _, err := probe.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		cancel()
		_ = closer.Close()
		os.Exit(1)
	}
}
