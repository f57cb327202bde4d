package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/M3kko/nolimit-dashboard/internal/testroster"
)

// Default configuration constants.
const (
	defaultAthletes    = 200
	defaultSeed        = 42
	defaultReports     = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		athletes = flag.Int("athletes", defaultAthletes, "Number of athletes to generate")
		seed     = flag.Int64("seed", defaultSeed, "Generator seed")
		roster   = flag.String("roster", "testdata/roster.yaml", "Roster file written by -generate")
		generate = flag.Bool("generate", false, "Only write the roster file and exit")
		reports  = flag.Int("reports", defaultReports, "Number of report exports to request")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile  = flag.String("log", "", "Log file for test output (default: testroster_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testroster.ShowHelp()
		return
	}

	if err := testroster.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testroster.Config{
		BaseURL:    *baseURL,
		Athletes:   *athletes,
		Seed:       *seed,
		RosterFile: *roster,
		Generate:   *generate,
		Reports:    *reports,
		Workers:    *workers,
		Timeout:    *timeout,
		Verbose:    *verbose,
	}

	if err := testroster.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel already called
	}
}
