package main

import (
	"context"
	"fmt"

	"go-accident-dashboard/internal/config"
	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/session"
	"go-accident-dashboard/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	// Global flags; they override the config file and environment.
	cfgFile    string
	flagSource string
	flagLevel  string
	flagPretty bool

	// Loaded configuration
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive dashboard over a road accident dataset",
	Long: `dashboard loads a road accident dataset from a CSV or JSON file, a URL
or a SQL table, and derives summary figures and chart views filtered by
year, region and severity.

Run "dashboard serve" for the HTTP API, or use the summary, views, export
and render commands for one-off results.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dashboard %s\n", Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./dashboard.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "dataset file path or URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", true, "human-readable log output")

	rootCmd.AddCommand(versionCmd)
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("source") {
		c.Source = flagSource
	}
	if f.Changed("log-level") {
		c.LogLevel = flagLevel
	}
	if f.Changed("pretty") {
		c.LogPretty = flagPretty
	}
	cfg = c

	utils.InitLoggerTo(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)
	return nil
}

// loadDataset reads the configured source.
func loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	src := cfg.DatasetSource()
	if src.Location == "" && src.Type != dataset.TypeSQL {
		return nil, fmt.Errorf("%w: no source configured (use --source or DASHBOARD_SOURCE)", dataset.ErrDataUnavailable)
	}
	return cfg.Loader().Load(ctx, src)
}

// newSession loads the dataset and wraps it in a session using the
// configured dashboard options.
func newSession(ctx context.Context, opts session.Options) (*session.Session, error) {
	dashOpts, err := cfg.DashboardOptions()
	if err != nil {
		return nil, err
	}
	opts.DashboardOptions = dashOpts

	ds, err := loadDataset(ctx)
	if err != nil {
		return nil, err
	}
	return session.New(ds, opts), nil
}

// criteriaFlags binds --year, --region and --severity on cmd.
func criteriaFlags(cmd *cobra.Command, c *model.FilterCriteria) {
	cmd.Flags().StringVar(&c.Year, "year", model.All, "year to show, or All")
	cmd.Flags().StringVar(&c.Region, "region", model.All, "region to show, or All")
	cmd.Flags().StringVar(&c.Severity, "severity", model.All, "accident severity to show, or All")
}
