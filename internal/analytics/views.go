package analytics

import (
	"slices"

	"go-accident-dashboard/internal/geo"
	"go-accident-dashboard/internal/model"
)

// Kind tells the presentation layer which chart family a view belongs to.
type Kind string

const (
	KindBar          Kind = "bar"
	KindLine         Kind = "line"
	KindPie          Kind = "pie"
	KindScatter      Kind = "scatter"
	KindDistribution Kind = "distribution"
	KindHeatmap      Kind = "heatmap"
	KindMap          Kind = "map"
)

// DefaultTopCauses is the length of the accident cause ranking.
const DefaultTopCauses = 10

// View is the self-contained payload of one chart or map. Exactly one of
// the data fields is set, depending on Kind.
type View struct {
	Key      string             `json:"key"`
	Kind     Kind               `json:"kind"`
	Title    string             `json:"title"`
	Groups   []model.GroupCount `json:"groups,omitempty"`
	Points   []model.Point      `json:"points,omitempty"`
	Samples  *Samples           `json:"samples,omitempty"`
	CrossTab *CrossTab          `json:"crossTab,omitempty"`
	Geo      *GeoView           `json:"geo,omitempty"`
}

// ViewOptions tunes view construction.
type ViewOptions struct {
	// TopCauses limits the cause ranking; 0 means DefaultTopCauses.
	TopCauses int
	// Countries resolves map coordinates; nil leaves every country unmapped.
	Countries geo.Lookup
}

type groupedView struct {
	key   string
	title string
	field string
	kind  Kind
	order func([]model.GroupCount) []model.GroupCount
}

func groupedViews(topCauses int) []groupedView {
	return []groupedView{
		{"year", "Accidents by Year", model.FieldYear, KindLine, SortNumeric},
		{"month", "Accidents by Month", model.FieldMonth, KindBar, nil},
		{"roadType", "Accidents by Road Type", model.FieldRoadType, KindBar, nil},
		{"weather", "Accidents by Weather Conditions", model.FieldWeather, KindBar, nil},
		{"severity", "Accident Severity", model.FieldSeverity, KindPie, nil},
		{"timeOfDay", "Accidents by Time of Day", model.FieldTimeOfDay, KindBar, nil},
		{"speedLimit", "Accidents by Speed Limit", model.FieldSpeedLimit, KindBar, SortNumeric},
		{"ageGroup", "Accidents by Driver Age Group", model.FieldDriverAgeGroup, KindBar, nil},
		{"cause", "Top Accident Causes", model.FieldCause, KindBar, func(g []model.GroupCount) []model.GroupCount {
			return TopN(g, topCauses)
		}},
	}
}

// ViewKeys lists the keys BuildViews produces, in order.
func ViewKeys() []string {
	keys := make([]string, 0, 13)
	for _, gv := range groupedViews(DefaultTopCauses) {
		keys = append(keys, gv.key)
	}
	return append(keys, "injuriesVsFatalities", "lossBySeverity", "severityByWeather", "countries")
}

// BuildViews computes every dashboard view from rows.
func BuildViews(rows []model.Row, opts ViewOptions) []View {
	top := opts.TopCauses
	if top <= 0 {
		top = DefaultTopCauses
	}

	views := make([]View, 0, 13)
	for _, gv := range groupedViews(top) {
		groups := GroupCount(rows, gv.field)
		if gv.order != nil {
			groups = gv.order(groups)
		}
		views = append(views, View{Key: gv.key, Kind: gv.kind, Title: gv.title, Groups: groups})
	}

	samples := GroupSamples(rows, model.FieldSeverity, model.FieldEconomicLoss)
	crossTab := CrossTabulate(rows, model.FieldSeverity, model.FieldWeather)
	geoView := Geo(rows, opts.Countries)

	views = append(views,
		View{
			Key:    "injuriesVsFatalities",
			Kind:   KindScatter,
			Title:  "Injuries vs Fatalities",
			Points: slices.Collect(Points(rows, model.FieldInjuries, model.FieldFatalities)),
		},
		View{Key: "lossBySeverity", Kind: KindDistribution, Title: "Economic Loss by Severity", Samples: &samples},
		View{Key: "severityByWeather", Kind: KindHeatmap, Title: "Severity by Weather Conditions", CrossTab: &crossTab},
		View{Key: "countries", Kind: KindMap, Title: "Accidents by Country", Geo: &geoView},
	)
	return views
}

// FindView returns the view with the given key.
func FindView(views []View, key string) (View, bool) {
	for _, v := range views {
		if v.Key == key {
			return v, true
		}
	}
	return View{}, false
}

// Dashboard is everything derived from the dataset for one set of criteria.
type Dashboard struct {
	Criteria model.FilterCriteria `json:"criteria"`
	Total    int                  `json:"total"`
	Summary  Summary              `json:"summary"`
	Cards    []Card               `json:"cards"`
	Options  FilterOptions        `json:"options"`
	Views    []View               `json:"views"`
}

// DashboardOptions combines view and formatting options.
type DashboardOptions struct {
	ViewOptions
	Currency string
}

// Compute filters the full dataset and derives the summary and every view
// from the matching rows. Filter options always come from the full dataset.
func Compute(rows []model.Row, criteria model.FilterCriteria, opts DashboardOptions) Dashboard {
	criteria = criteria.Normalize()
	subset := Filter(rows, criteria)
	summary := Summarize(subset)
	return Dashboard{
		Criteria: criteria,
		Total:    len(rows),
		Summary:  summary,
		Cards:    summary.Cards(opts.Currency),
		Options:  Options(rows),
		Views:    BuildViews(subset, opts.ViewOptions),
	}
}
