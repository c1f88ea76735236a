package main

import (
	"encoding/json"
	"fmt"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/report"
	"go-accident-dashboard/internal/session"

	"github.com/spf13/cobra"
)

var (
	summaryCriteria model.FilterCriteria
	viewsCriteria   model.FilterCriteria
	viewsJSON       bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the summary figures and top causes",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var viewsCmd = &cobra.Command{
	Use:   "views [key...]",
	Short: "Print dashboard views as tables or JSON",
	Long: `Print the dashboard views for the selected criteria. With no keys every
view is printed.

Keys: ` + fmt.Sprint(analytics.ViewKeys()),
	RunE: runViews,
}

func init() {
	criteriaFlags(summaryCmd, &summaryCriteria)
	criteriaFlags(viewsCmd, &viewsCriteria)
	viewsCmd.Flags().BoolVar(&viewsJSON, "json", false, "print JSON instead of tables")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(viewsCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd.Context(), session.Options{})
	if err != nil {
		return err
	}
	dash, err := s.Apply(summaryCriteria)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.WriteSummary(out, dash); err != nil {
		return err
	}
	if view, ok := analytics.FindView(dash.Views, "cause"); ok {
		fmt.Fprintln(out)
		return report.WriteView(out, view)
	}
	return nil
}

func runViews(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// All views as tables: let the session push them straight to the terminal.
	if len(args) == 0 && !viewsJSON {
		s, err := newSession(cmd.Context(), session.Options{Presenter: report.NewPresenter(out)})
		if err != nil {
			return err
		}
		_, err = s.Apply(viewsCriteria)
		return err
	}

	s, err := newSession(cmd.Context(), session.Options{})
	if err != nil {
		return err
	}
	dash, err := s.Apply(viewsCriteria)
	if err != nil {
		return err
	}

	views := dash.Views
	if len(args) > 0 {
		views = make([]analytics.View, 0, len(args))
		for _, key := range args {
			v, ok := analytics.FindView(dash.Views, key)
			if !ok {
				return fmt.Errorf("unknown view %q", key)
			}
			views = append(views, v)
		}
	}

	if viewsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	return report.WriteViews(out, views)
}
