package probe

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/datenight/planner/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) (io.Closer, error) {
	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "probe_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.Init(logger.WithOutput(io.MultiWriter(os.Stdout, file))); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Date Night Planner Probe
========================

Fires concurrent searches at a running planner and checks the ordering
guarantees: unique places, seed reproducibility, the surprise cap and
exclusion of previously shown places.

Usage:
  go run ./cmd/probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -searches int
        Number of searches to run (default 200)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -lat float
        Center latitude (default 34.0522)
  -lng float
        Center longitude (default -118.2437)
  -radius float
        Search radius in miles (default 5)
  -surprise-limit int
        Expected surprise result cap (default 15)
  -seed int
        Seed for the reproducibility check (default 42)
  -output string
        Output file for search results (disabled when empty)
  -log string
        Log file for probe output (default: probe_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Probe a local instance
  go run ./cmd/probe

  # Heavier run around San Francisco
  go run ./cmd/probe -searches 1000 -workers 32 -lat 37.7749 -lng -122.4194
`)
}
