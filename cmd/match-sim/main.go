// Command match-sim drives a running tracker with a synthetic match and
// verifies the reported stats.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/matchxg/internal/matchsim"
	"github.com/okian/matchxg/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumEvents     = 500
	defaultDuplicateRate = 0.2
	defaultWorkers       = 2 // multiplier for runtime.NumCPU()
	defaultTimeout       = 30 * time.Second
	defaultRunTimeout    = 10 * time.Minute
)

func newRootCmd() *cobra.Command {
	cfg := &matchsim.Config{}
	var logFormat string

	cmd := &cobra.Command{
		Use:   "match-sim",
		Short: "Submit a synthetic match to a tracker and verify its stats",
		Long: "match-sim posts random events (and replays of some ids) to a running\n" +
			"tracker, then checks per-team counts and that cached stats agree with\n" +
			"the server's own event log. Keep --events below the server dedupe_size.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithFormat(logFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if cfg.Verbose {
				_ = logger.SetLevelString("debug")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			_, err := matchsim.Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.NumEvents, "events", defaultNumEvents, "number of unique events to submit")
	f.Float64Var(&cfg.DuplicateRate, "dup-rate", defaultDuplicateRate, "share of extra submissions that replay an event_id")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "number of concurrent submitters")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.BoolVar(&cfg.Reset, "reset", true, "reset the match first so counts can be compared exactly")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every submission")
	f.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "simulation failed:", err)
		os.Exit(1)
	}
}
