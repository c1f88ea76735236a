package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"go-accident-dashboard/internal/analytics"
	"go-accident-dashboard/internal/model"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Default image size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// PNGPresenter renders each view to <Dir>/<key>.png, overwriting the
// previous image of the same key.
type PNGPresenter struct {
	Dir    string
	Width  int
	Height int
}

// NewPNGPresenter returns a presenter writing default-sized images to dir.
func NewPNGPresenter(dir string) *PNGPresenter {
	return &PNGPresenter{Dir: dir, Width: DefaultWidth, Height: DefaultHeight}
}

// Path returns the image file of key.
func (p *PNGPresenter) Path(key string) string {
	return filepath.Join(p.Dir, key+".png")
}

// UpsertView implements Presenter. The image is written to a temporary file
// first so readers never see a partial PNG.
func (p *PNGPresenter) UpsertView(key string, view analytics.View) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}

	var buf bytes.Buffer
	if err := p.Render(&buf, view); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(p.Dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write chart %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p.Path(key))
}

// Render draws view as a PNG. Views without data produce a placeholder
// image.
func (p *PNGPresenter) Render(w io.Writer, view analytics.View) error {
	width, height := p.Width, p.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	var err error
	switch view.Kind {
	case analytics.KindPie:
		err = pieChart(view, width, height).Render(chart.PNG, w)
	case analytics.KindLine:
		err = lineChart(view, width, height).Render(chart.PNG, w)
	case analytics.KindScatter:
		err = scatterChart(view, width, height).Render(chart.PNG, w)
	case analytics.KindDistribution:
		err = barChart(view.Title, meanValues(view.Samples), width, height).Render(chart.PNG, w)
	case analytics.KindHeatmap:
		err = heatmapChart(view, width, height).Render(chart.PNG, w)
	case analytics.KindMap:
		err = mapChart(view, width, height).Render(chart.PNG, w)
	default:
		err = barChart(view.Title, groupValues(view.Groups), width, height).Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", view.Key, err)
	}
	return nil
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func groupValues(groups []model.GroupCount) []chart.Value {
	values := make([]chart.Value, len(groups))
	for i, g := range groups {
		values[i] = chart.Value{Label: g.Key, Value: float64(g.Count)}
	}
	return values
}

func meanValues(s *analytics.Samples) []chart.Value {
	if s == nil {
		return nil
	}
	values := make([]chart.Value, 0, len(s.Categories))
	for _, c := range s.Categories {
		vals := s.Values[c]
		if len(vals) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		values = append(values, chart.Value{Label: c, Value: sum / float64(len(vals))})
	}
	return values
}

func placeholder(title string, width, height int) renderer {
	return chart.BarChart{
		Title:  title,
		Width:  width,
		Height: height,
		YAxis:  chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: 1}},
		Bars:   []chart.Value{{Label: "No data", Value: 0}},
	}
}

func barChart(title string, values []chart.Value, width, height int) renderer {
	if len(values) == 0 {
		return placeholder(title, width, height)
	}
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v.Value)
	}
	if top <= 0 {
		top = 1
	}
	barWidth := width / (2 * len(values))
	if barWidth > 60 {
		barWidth = 60
	}
	return chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   height,
		BarWidth: barWidth,
		YAxis:    chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
		Bars:     values,
	}
}

func pieChart(view analytics.View, width, height int) renderer {
	values := groupValues(view.Groups)
	if len(values) == 0 {
		return placeholder(view.Title, width, height)
	}
	return chart.PieChart{
		Title:  view.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

// span returns an axis range covering vals with a margin, never empty.
func span(vals []float64) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(vals) == 0 {
		lo, hi = 0, 1
	}
	if lo == hi {
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func lineChart(view analytics.View, width, height int) renderer {
	if len(view.Groups) == 0 {
		return placeholder(view.Title, width, height)
	}
	xs := make([]float64, len(view.Groups))
	ys := make([]float64, len(view.Groups))
	ticks := make([]chart.Tick, len(view.Groups))
	for i, g := range view.Groups {
		xs[i] = float64(i)
		ys[i] = float64(g.Count)
		ticks[i] = chart.Tick{Value: xs[i], Label: g.Key}
	}
	return chart.Chart{
		Title:  view.Title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Ticks: ticks, Range: span(xs)},
		YAxis:  chart.YAxis{Range: span(append(ys, 0))},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    view.Title,
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeWidth: 2, StrokeColor: chart.ColorBlue, DotWidth: 4, DotColor: chart.ColorBlue},
			},
		},
	}
}

// pointStyle draws markers without a connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func scatterChart(view analytics.View, width, height int) renderer {
	if len(view.Points) == 0 {
		return placeholder(view.Title, width, height)
	}
	xs := make([]float64, len(view.Points))
	ys := make([]float64, len(view.Points))
	for i, p := range view.Points {
		xs[i] = p.X
		ys[i] = p.Y
	}
	return chart.Chart{
		Title:  view.Title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: model.FieldInjuries, Range: span(xs)},
		YAxis:  chart.YAxis{Name: model.FieldFatalities, Range: span(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys, Style: pointStyle(chart.ColorRed)},
		},
	}
}

// heatmapChart stacks the column counts of each cross-tab row.
func heatmapChart(view analytics.View, width, height int) renderer {
	ct := view.CrossTab
	if ct == nil || len(ct.Rows) == 0 {
		return placeholder(view.Title, width, height)
	}
	dense := ct.Dense()
	bars := make([]chart.StackedBar, 0, len(ct.Rows))
	for i, r := range ct.Rows {
		var values []chart.Value
		for j, c := range ct.Cols {
			if dense[i][j] > 0 {
				values = append(values, chart.Value{Label: c, Value: float64(dense[i][j])})
			}
		}
		if len(values) == 0 {
			continue
		}
		bars = append(bars, chart.StackedBar{Name: r, Values: values})
	}
	if len(bars) == 0 {
		return placeholder(view.Title, width, height)
	}
	return chart.StackedBarChart{
		Title:  view.Title,
		Width:  width,
		Height: height,
		Bars:   bars,
	}
}

// mapChart plots mapped countries by longitude and latitude.
func mapChart(view analytics.View, width, height int) renderer {
	if view.Geo == nil || len(view.Geo.Points) == 0 {
		return placeholder(view.Title, width, height)
	}
	xs := make([]float64, len(view.Geo.Points))
	ys := make([]float64, len(view.Geo.Points))
	labels := make([]chart.Value2, len(view.Geo.Points))
	for i, p := range view.Geo.Points {
		xs[i] = p.Lng
		ys[i] = p.Lat
		labels[i] = chart.Value2{XValue: p.Lng, YValue: p.Lat, Label: fmt.Sprintf("%s (%d)", p.Country, p.Count)}
	}
	return chart.Chart{
		Title:  view.Title,
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: "Longitude", Range: &chart.ContinuousRange{Min: -180, Max: 180}},
		YAxis:  chart.YAxis{Name: "Latitude", Range: &chart.ContinuousRange{Min: -90, Max: 90}},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys, Style: pointStyle(chart.ColorRed)},
			chart.AnnotationSeries{Annotations: labels},
		},
	}
}
