package analytics

import (
	"slices"
	"testing"

	"go-accident-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []model.Row {
	return []model.Row{
		{model.FieldYear: 2020, model.FieldRegion: "Asia", model.FieldSeverity: "Minor", model.FieldWeather: "Rainy", model.FieldCause: "Speeding", model.FieldCountry: "India", model.FieldInjuries: 3, model.FieldFatalities: 0, model.FieldEconomicLoss: 1000.5},
		{model.FieldYear: 2021, model.FieldRegion: "Europe", model.FieldSeverity: "Severe", model.FieldWeather: "Clear", model.FieldCause: "Drunk Driving", model.FieldCountry: "Germany", model.FieldInjuries: 5, model.FieldFatalities: 2, model.FieldEconomicLoss: 5000},
		{model.FieldYear: 2020, model.FieldRegion: "Asia", model.FieldSeverity: "Severe", model.FieldWeather: "Rainy", model.FieldCause: "Speeding", model.FieldCountry: "Atlantis", model.FieldInjuries: "x", model.FieldFatalities: 1, model.FieldEconomicLoss: nil},
		{model.FieldYear: nil, model.FieldRegion: "", model.FieldSeverity: "Minor", model.FieldWeather: "", model.FieldCause: "Drunk Driving", model.FieldInjuries: 1, model.FieldFatalities: 0},
		{model.FieldYear: 2019, model.FieldSeverity: "Moderate", model.FieldWeather: "Foggy", model.FieldCause: "Fatigue", model.FieldCountry: "India", model.FieldEconomicLoss: "250"},
	}
}

func nonEmpty(rows []model.Row, field string) int {
	n := 0
	for _, r := range rows {
		if _, ok := r.Key(field); ok {
			n++
		}
	}
	return n
}

func TestGroupCount(t *testing.T) {
	rows := sampleRows()

	got := GroupCount(rows, model.FieldYear)
	assert.Equal(t, []model.GroupCount{
		{Key: "2020", Count: 2},
		{Key: "2021", Count: 1},
		{Key: "2019", Count: 1},
	}, got)

	got = GroupCount(rows, model.FieldRegion)
	assert.Equal(t, []model.GroupCount{{Key: "Asia", Count: 2}, {Key: "Europe", Count: 1}}, got)
}

func TestGroupCount_SumMatchesNonEmptyRows(t *testing.T) {
	rows := sampleRows()
	for _, field := range model.KnownFields {
		total := 0
		for _, g := range GroupCount(rows, field) {
			assert.GreaterOrEqual(t, g.Count, 1)
			total += g.Count
		}
		assert.Equal(t, nonEmpty(rows, field), total, field)
	}
}

func TestGroupCount_Empty(t *testing.T) {
	assert.Empty(t, GroupCount(nil, model.FieldYear))
	assert.Empty(t, GroupCount([]model.Row{nil, {}}, model.FieldYear))
}

func TestGroupCount_MixedNumericTypesShareKey(t *testing.T) {
	rows := []model.Row{{model.FieldSpeedLimit: 60}, {model.FieldSpeedLimit: 60.0}, {model.FieldSpeedLimit: "60"}}
	assert.Equal(t, []model.GroupCount{{Key: "60", Count: 3}}, GroupCount(rows, model.FieldSpeedLimit))
}

func TestSortNumeric(t *testing.T) {
	in := []model.GroupCount{
		{Key: "100", Count: 1},
		{Key: "n/a", Count: 4},
		{Key: "30", Count: 2},
		{Key: "80.5", Count: 3},
		{Key: "unknown", Count: 5},
	}
	got := SortNumeric(in)
	assert.Equal(t, []string{"30", "80.5", "100", "n/a", "unknown"}, keys(got))
	assert.Equal(t, "100", in[0].Key, "input is not modified")
}

func TestTopN(t *testing.T) {
	groups := []model.GroupCount{
		{Key: "a", Count: 2},
		{Key: "b", Count: 5},
		{Key: "c", Count: 2},
		{Key: "d", Count: 5},
		{Key: "e", Count: 1},
	}

	got := TopN(groups, 3)
	assert.Equal(t, []string{"b", "d", "a"}, keys(got))

	all := TopN(groups, 10)
	require.Len(t, all, 5)
	assert.True(t, slices.IsSortedFunc(all, func(a, b model.GroupCount) int { return b.Count - a.Count }))
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, keys(all))

	assert.Empty(t, TopN(groups, 0))
	assert.Empty(t, TopN(groups, -1))
	assert.Empty(t, TopN(nil, 3))
}

func TestTopN_TiesFollowFirstOccurrence(t *testing.T) {
	rows := []model.Row{
		{model.FieldCause: "Fatigue"},
		{model.FieldCause: "Speeding"},
		{model.FieldCause: "Speeding"},
		{model.FieldCause: "Fatigue"},
		{model.FieldCause: "Weather"},
	}
	got := TopN(GroupCount(rows, model.FieldCause), 2)
	assert.Equal(t, []model.GroupCount{{Key: "Fatigue", Count: 2}, {Key: "Speeding", Count: 2}}, got)
}

func TestCrossTabulate(t *testing.T) {
	ct := CrossTabulate(sampleRows(), model.FieldSeverity, model.FieldWeather)

	assert.Equal(t, []string{"Minor", "Severe", "Moderate"}, ct.Rows)
	assert.Equal(t, []string{"Rainy", "Clear", "Foggy"}, ct.Cols)
	assert.Equal(t, []model.CrossTabCell{
		{Row: "Minor", Col: "Rainy", Count: 1},
		{Row: "Severe", Col: "Clear", Count: 1},
		{Row: "Severe", Col: "Rainy", Count: 1},
		{Row: "Moderate", Col: "Foggy", Count: 1},
	}, ct.Cells)

	for _, cell := range ct.Cells {
		assert.Positive(t, cell.Count)
		assert.False(t, cell.Row == "Minor" && cell.Col == "Clear", "zero pairs are absent")
	}

	assert.Equal(t, [][]int{
		{1, 0, 0},
		{1, 1, 0},
		{0, 0, 1},
	}, ct.Dense())
}

func TestCrossTabulate_AxesFollowGroupCount(t *testing.T) {
	rows := []model.Row{
		{model.FieldSeverity: "Minor"},
		{model.FieldSeverity: "Fatal", model.FieldWeather: "Rain"},
		{model.FieldSeverity: "Minor", model.FieldWeather: "Clear"},
		{model.FieldSeverity: "Severe"},
		{model.FieldWeather: "Snow"},
	}
	ct := CrossTabulate(rows, model.FieldSeverity, model.FieldWeather)

	assert.Equal(t, Distinct(rows, model.FieldSeverity), ct.Rows)
	assert.Equal(t, []string{"Minor", "Fatal", "Severe"}, ct.Rows)
	assert.Equal(t, []string{"Rain", "Clear", "Snow"}, ct.Cols)
	assert.Equal(t, []model.CrossTabCell{
		{Row: "Fatal", Col: "Rain", Count: 1},
		{Row: "Minor", Col: "Clear", Count: 1},
	}, ct.Cells)
	assert.Equal(t, [][]int{
		{0, 1, 0},
		{1, 0, 0},
		{0, 0, 0},
	}, ct.Dense())
}

func TestCrossTab_WithAxes(t *testing.T) {
	ct := CrossTabulate(sampleRows(), model.FieldSeverity, model.FieldWeather)
	ordered := ct.WithAxes([]string{"Severe", "Minor"}, []string{"Clear", "Rainy"})

	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, ordered.Dense())
	assert.Len(t, ordered.Cells, 3, "moderate/foggy is outside the axes")
	assert.Len(t, ct.Cells, 4, "original is unchanged")
}

func TestPoints(t *testing.T) {
	got := slices.Collect(Points(sampleRows(), model.FieldInjuries, model.FieldFatalities))
	assert.Equal(t, []model.Point{{X: 3, Y: 0}, {X: 5, Y: 2}, {X: 1, Y: 0}}, got)
}

func TestPoints_StopsEarly(t *testing.T) {
	n := 0
	for range Points(sampleRows(), model.FieldInjuries, model.FieldFatalities) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestGroupSamples(t *testing.T) {
	s := GroupSamples(sampleRows(), model.FieldSeverity, model.FieldEconomicLoss)

	assert.Equal(t, []string{"Minor", "Severe", "Moderate"}, s.Categories)
	assert.Equal(t, []float64{1000.5}, s.Values["Minor"])
	assert.Equal(t, []float64{5000}, s.Values["Severe"])
	assert.Equal(t, []float64{250}, s.Values["Moderate"])
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"India", "Germany", "Atlantis"}, Distinct(sampleRows(), model.FieldCountry))
}

func keys(groups []model.GroupCount) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}
