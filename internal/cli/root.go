// Package cli contains the perfctl commands. They run the same service the
// HTTP server runs, without the server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	app "github.com/M3kko/nolimit-dashboard/internal/app"
	"github.com/M3kko/nolimit-dashboard/internal/config"
	"github.com/M3kko/nolimit-dashboard/pkg/logger"
)

// Version is the current version of perfctl.
var Version = "0.1.0"

const runTimeout = 2 * time.Minute

// globals are the persistent flags shared by every command.
type globals struct {
	format   string
	logLevel string
	roster   string
	strict   bool
	sports   []string
	renderer string
}

// env is what a command runs against.
type env struct {
	flags globals
	out   io.Writer
	cfg   *config.Config
	svc   *app.Service
}

// NewRootCmd builds the perfctl command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	rt := &env{out: out}

	root := &cobra.Command{
		Use:   "perfctl",
		Short: "Query athlete analytics and export medical reports",
		Long: `perfctl reads the roster, prints team analytics and athlete history, and
writes athlete medical reports as PDF files.

Configuration is read the same way the server reads it: defaults, then the
YAML file named by NOLIMIT_CONFIG, then NOLIMIT_* environment variables.
Flags override all of them.

Examples:
  perfctl overview
  perfctl athletes --sport Swimming --sort progress
  perfctl history 4 --range 7d --format json
  perfctl report 4 --range 14d --chart --out ./reports`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: rt.start,
	}
	root.SetOut(out)
	bindGlobals(root.PersistentFlags(), &rt.flags)

	root.AddCommand(
		newOverviewCmd(rt),
		newAthletesCmd(rt),
		newHistoryCmd(rt),
		newReportCmd(rt),
	)
	return root
}

func bindGlobals(fs *pflag.FlagSet, g *globals) {
	fs.StringVar(&g.format, "format", formatYAML, "Output format (yaml|json)")
	fs.StringVar(&g.logLevel, "log-level", "warn", "Log level written to stderr (debug|info|warn|error)")
	fs.StringVar(&g.roster, "roster", "", "Roster file (.yaml, .toml or .json); overrides roster_path")
	fs.BoolVar(&g.strict, "strict", false, "Reject the whole roster when any record is invalid")
	fs.StringSliceVar(&g.sports, "known-sports", nil, "Restrict accepted sports (comma separated)")
	fs.StringVar(&g.renderer, "renderer", "", "Chart renderer (gochart|chrome); overrides chart_renderer")
}

// apply copies explicitly set flags over the loaded configuration.
func (g *globals) apply(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "roster":
			cfg.RosterPath = g.roster
		case "strict":
			cfg.StrictRoster = g.strict
		case "known-sports":
			cfg.KnownSports = g.sports
		case "renderer":
			cfg.ChartRenderer = g.renderer
		}
	})
}

func (rt *env) start(cmd *cobra.Command, _ []string) error {
	if err := checkFormat(rt.flags.format); err != nil {
		return err
	}
	if err := logger.InitWithOptions(logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(rt.flags.logLevel); err != nil {
		return err
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}
	rt.flags.apply(cmd.Flags(), cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt.cfg = cfg

	// One worker is enough: commands export synchronously.
	opts := append(app.FromConfig(cfg), app.WithWorkerCount(1), app.WithLogger(logger.Named("perfctl")))
	svc := app.New(opts...)
	if err := svc.Start(cmd.Context()); err != nil {
		return err
	}
	rt.svc = svc
	return nil
}

func (rt *env) stop() {
	if rt.svc != nil {
		rt.svc.Stop()
		rt.svc = nil
	}
}

// run wraps a command body so the service stops whether or not it fails.
func (rt *env) run(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer rt.stop()
		return fn(cmd, args)
	}
}

func (rt *env) print(v any) error {
	return write(rt.out, rt.flags.format, v)
}

// Execute runs perfctl with the process arguments.
func Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if err := NewRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
