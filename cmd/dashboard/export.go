package main

import (
	"context"
	"fmt"
	"path/filepath"

	"go-accident-dashboard/internal/dataset"
	"go-accident-dashboard/internal/export"
	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/internal/session"
	"go-accident-dashboard/internal/store"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportCriteria  model.FilterCriteria
	exportFormat    string
	exportOut       string
	exportDashboard bool

	renderCriteria model.FilterCriteria
	renderOut      string

	importDriver string
	importDSN    string
	importTable  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered rows or the computed dashboard to a file",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every dashboard view as a PNG chart",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the dataset into a SQL table",
	Long: `Load the configured file or URL source and write its rows to a SQL
table, replacing any existing table. The table can then serve as a sql
source.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	criteriaFlags(exportCmd, &exportCriteria)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "export format: csv, json, xlsx or sqlite")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output directory (default is output_dir)")
	exportCmd.Flags().BoolVar(&exportDashboard, "dashboard", false, "export the computed dashboard as JSON instead of rows")

	criteriaFlags(renderCmd, &renderCriteria)
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "chart directory (default is chart_dir, then ./charts)")

	importCmd.Flags().StringVar(&importDriver, "driver", "", "sql driver: sqlite3 or postgres (default is sql_driver)")
	importCmd.Flags().StringVar(&importDSN, "dsn", "", "database DSN (default is sql_dsn)")
	importCmd.Flags().StringVar(&importTable, "table", "", "table name (default is sql_table)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(importCmd)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	s, err := newSession(cmd.Context(), session.Options{})
	if err != nil {
		return err
	}

	m := export.NewManager(orDefault(exportOut, cfg.OutputDir))
	if err := m.EnsureBaseDir(); err != nil {
		return err
	}

	var res export.Result
	if exportDashboard {
		dash, err := s.Preview(exportCriteria)
		if err != nil {
			return err
		}
		res, err = m.ExportDashboard(cmd.Context(), dash)
		if err != nil {
			return err
		}
	} else {
		columns, rows, err := s.Subset(exportCriteria)
		if err != nil {
			return err
		}
		res, err = m.Export(cmd.Context(), rows, columns, format)
		if err != nil {
			return err
		}
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Exported %d records to %s\n", res.RecordCount, res.Path)
	return nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	dir := orDefault(renderOut, orDefault(cfg.ChartDir, "charts"))
	png := render.NewPNGPresenter(dir)

	s, err := newSession(cmd.Context(), session.Options{Presenter: png})
	if err != nil {
		return err
	}
	dash, err := s.Apply(renderCriteria)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, v := range dash.Views {
		fmt.Fprintln(out, png.Path(v.Key))
	}
	color.New(color.FgGreen).Fprintf(out, "✓ Rendered %d charts to %s\n", len(dash.Views), filepath.Clean(dir))
	return nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	if cfg.DatasetSource().Type == dataset.TypeSQL {
		return fmt.Errorf("import needs a file or URL source (use --source)")
	}
	driver := orDefault(importDriver, cfg.SQLDriver)
	dsn := orDefault(importDSN, cfg.SQLDSN)
	table := orDefault(importTable, cfg.SQLTable)
	if dsn == "" {
		return fmt.Errorf("no database DSN (use --dsn or sql_dsn)")
	}

	ds, err := loadDataset(cmd.Context())
	if err != nil {
		return err
	}
	n, err := importRows(cmd.Context(), ds, driver, dsn, table)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Imported %d rows into %s\n", n, table)
	return nil
}

func importRows(ctx context.Context, ds *dataset.Dataset, driver, dsn, table string) (int, error) {
	db, err := store.Open(driver, dsn)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	return db.SaveRows(ctx, table, ds.Columns, ds.Rows)
}
