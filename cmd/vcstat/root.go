package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/okian/vcdash/internal/app"
	"github.com/okian/vcdash/internal/config"
	"github.com/okian/vcdash/pkg/logger"
)

var version = "dev"

// cli holds the flags shared by every subcommand and the service they build.
type cli struct {
	configPath string
	baseURL    string
	jsonOut    bool
	verbose    bool

	svc *app.Service
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "vcstat",
		Short: "vcstat - voice-channel usage in the terminal",
		Long: `vcstat reads the voice-channel usage API and prints the weekly stacked
chart, today's usage, all-time totals, the ranking and monthly reports.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.svc == nil {
				return nil
			}
			return c.svc.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv(config.FileEnv), "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "Usage API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log at debug level to stderr")

	rootCmd.AddCommand(
		c.weeklyCmd(),
		c.todayCmd(),
		c.totalCmd(),
		c.rankingCmd(),
		c.monthlyCmd(),
		c.watchCmd(),
	)
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cfg, err := config.LoadFile(ctx, c.configPath)
	if err != nil {
		return err
	}
	if c.baseURL != "" {
		cfg.UpstreamBaseURL = c.baseURL
	}
	// Background refresh is a server concern.
	cfg.RefreshIntervalSeconds = 0

	if err := logger.InitWith(logger.Options{Format: cfg.LogFormat, Output: cmd.ErrOrStderr()}); err != nil {
		return err
	}
	level := "warn"
	if c.verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	c.svc, err = app.FromConfig(ctx, cfg, logger.Get())
	return err
}

func (c *cli) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
