package main

import (
	"fmt"
	"os"

	"go-accident-dashboard/internal/config"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and create the dashboard configuration",
	Long: `View and create the dashboard configuration.

Settings are read from ./dashboard.yaml (or --config), then from
DASHBOARD_* environment variables, which win. A .env file in the working
directory is loaded into the environment first.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with the default settings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultFile
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	c := config.Default()
	c.Source = cfg.Source
	if err := config.Save(c, path); err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
