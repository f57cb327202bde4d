package testroster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/M3kko/nolimit-dashboard/pkg/logger"
)

// SetupLogging configures logging to a rotated file. If logFile is empty, a
// timestamped filename is generated.
func SetupLogging(logFile string, verbose bool) error {
	if logFile == "" {
		logFile = "testroster_" + time.Now().Format("20060102_150405") + ".log"
	}
	if err := logger.InitWithOptions(logger.WithFile(logFile)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		if err := logger.SetLevelString("debug"); err != nil {
			return err
		}
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the roster test tool.
func ShowHelp() {
	os.Stdout.WriteString(`NoLimit Roster Test Tool
========================

Generates a synthetic roster and verifies a running service against it.

Usage:
  go run cmd/test-roster/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -athletes int
        Number of athletes to generate (default 200)
  -seed int
        Generator seed (default 42)
  -roster string
        Roster file written by -generate (default "testdata/roster.yaml")
  -generate
        Only write the roster file and exit
  -reports int
        Number of report exports to request (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for test output (default: testroster_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Write a roster, start the service on it, then verify
  go run cmd/test-roster/main.go -generate -athletes 500 -seed 7
  NOLIMIT_ROSTER_PATH=testdata/roster.yaml go run cmd/main.go
  go run cmd/test-roster/main.go -athletes 500 -seed 7
`)
}
