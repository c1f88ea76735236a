// Package report prints dashboards and views as colored text tables.
package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"sync"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/pkg/utils"

	"github.com/fatih/color"
)

// Shared color printers.
var (
	colorRed    = color.New(color.FgRed)
	colorYellow = color.New(color.FgYellow)
	colorGreen  = color.New(color.FgGreen)
	colorCyan   = color.New(color.FgCyan)
	colorBold   = color.New(color.Bold)
)

// ColorSeverity colors accident severity labels.
func ColorSeverity(val string) string {
	switch val {
	case "Fatal", "Severe":
		return colorRed.Sprint(val)
	case "Moderate":
		return colorYellow.Sprint(val)
	case "Minor":
		return colorGreen.Sprint(val)
	default:
		return val
	}
}

func colorValue(val string) string {
	return colorCyan.Sprint(val)
}

// WriteSummary prints the active criteria and the summary cards.
func WriteSummary(w io.Writer, dash analytics.Dashboard) error {
	c := dash.Criteria
	if _, err := fmt.Fprintf(w, "%s  year=%s region=%s severity=%s (%d of %d rows)\n\n",
		colorBold.Sprint("Accident summary"), c.Year, c.Region, c.Severity, dash.Summary.Count, dash.Total); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}

	tbl := NewTable(
		Column{Header: "Metric"},
		Column{Header: "Value", Align: AlignRight, Color: colorValue},
	)
	for _, card := range dash.Cards {
		tbl.AddRow(card.Label, card.Value)
	}
	return tbl.Render(w)
}

// WriteView prints one view as a table suited to its kind.
func WriteView(w io.Writer, view analytics.View) error {
	if _, err := fmt.Fprintf(w, "\n%s (%s)\n", colorBold.Sprint(view.Title), view.Kind); err != nil {
		return fmt.Errorf("render view: %w", err)
	}

	var tbl *Table
	switch {
	case view.Samples != nil:
		tbl = samplesTable(view.Samples)
	case view.CrossTab != nil:
		tbl = crossTabTable(view.CrossTab)
	case view.Geo != nil:
		return writeGeo(w, view.Geo)
	case view.Kind == analytics.KindScatter:
		tbl = NewTable(Column{Header: "X", Align: AlignRight}, Column{Header: "Y", Align: AlignRight})
		for _, p := range view.Points {
			tbl.AddRow(formatFloat(p.X), formatFloat(p.Y))
		}
	default:
		tbl = groupsTable(view)
	}

	if tbl.Len() == 0 {
		_, err := fmt.Fprintln(w, "  (no data)")
		return err
	}
	return tbl.Render(w)
}

// WriteViews prints every view in order.
func WriteViews(w io.Writer, views []analytics.View) error {
	for _, v := range views {
		if err := WriteView(w, v); err != nil {
			return err
		}
	}
	return nil
}

func groupsTable(view analytics.View) *Table {
	var colorKey ColorFunc
	if view.Key == "severity" {
		colorKey = ColorSeverity
	}
	tbl := NewTable(
		Column{Header: "Value", Color: colorKey},
		Column{Header: "Count", Align: AlignRight},
		Column{Header: "Share", Align: AlignRight},
	)
	total := 0
	for _, g := range view.Groups {
		total += g.Count
	}
	for _, g := range view.Groups {
		tbl.AddRow(g.Key, strconv.Itoa(g.Count), fmt.Sprintf("%.1f%%", 100*float64(g.Count)/float64(total)))
	}
	return tbl
}

func samplesTable(s *analytics.Samples) *Table {
	tbl := NewTable(
		Column{Header: "Category", Color: ColorSeverity},
		Column{Header: "Samples", Align: AlignRight},
		Column{Header: "Mean", Align: AlignRight},
		Column{Header: "Min", Align: AlignRight},
		Column{Header: "Max", Align: AlignRight},
	)
	for _, c := range s.Categories {
		vals := s.Values[c]
		if len(vals) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		tbl.AddRow(c, strconv.Itoa(len(vals)),
			utils.FormatNumber(sum/float64(len(vals))),
			utils.FormatNumber(slices.Min(vals)),
			utils.FormatNumber(slices.Max(vals)))
	}
	return tbl
}

func crossTabTable(ct *analytics.CrossTab) *Table {
	cols := make([]Column, 0, len(ct.Cols)+1)
	cols = append(cols, Column{Header: ct.RowField, Color: ColorSeverity})
	for _, c := range ct.Cols {
		cols = append(cols, Column{Header: c, Align: AlignRight})
	}
	tbl := NewTable(cols...)
	for i, row := range ct.Dense() {
		values := make([]string, 0, len(row)+1)
		values = append(values, ct.Rows[i])
		for _, n := range row {
			values = append(values, strconv.Itoa(n))
		}
		tbl.AddRow(values...)
	}
	return tbl
}

func writeGeo(w io.Writer, g *analytics.GeoView) error {
	tbl := NewTable(
		Column{Header: "Country"},
		Column{Header: "Lat", Align: AlignRight},
		Column{Header: "Lng", Align: AlignRight},
		Column{Header: "Count", Align: AlignRight},
	)
	for _, p := range g.Points {
		tbl.AddRow(p.Country, formatFloat(p.Lat), formatFloat(p.Lng), strconv.Itoa(p.Count))
	}
	if tbl.Len() == 0 {
		if _, err := fmt.Fprintln(w, "  (no mapped countries)"); err != nil {
			return err
		}
	} else if err := tbl.Render(w); err != nil {
		return err
	}

	for _, u := range g.Unmapped {
		if _, err := fmt.Fprintf(w, "  %s %s (%d)\n", colorYellow.Sprint("unmapped:"), u.Key, u.Count); err != nil {
			return fmt.Errorf("render view: %w", err)
		}
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Presenter prints each view it receives to W.
type Presenter struct {
	mu sync.Mutex
	W  io.Writer
}

// NewPresenter returns a presenter printing to w.
func NewPresenter(w io.Writer) *Presenter {
	return &Presenter{W: w}
}

// UpsertView implements render.Presenter.
func (p *Presenter) UpsertView(_ string, view analytics.View) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return WriteView(p.W, view)
}
