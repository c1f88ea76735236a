package analytics

import (
	"testing"

	"go-accident-dashboard/internal/geo"
	"go-accident-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_ResponseTimeSkipsNonNumeric(t *testing.T) {
	rows := []model.Row{
		{model.FieldResponseTime: 10},
		{model.FieldResponseTime: "x"},
		{model.FieldResponseTime: 20},
	}
	s := Summarize(rows)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.ResponseSamples)
	assert.InDelta(t, 15.0, s.AvgResponseTime, 1e-9)
}

func TestSummarize_LossTreatsMissingAsZero(t *testing.T) {
	rows := []model.Row{
		{model.FieldEconomicLoss: 100},
		{model.FieldEconomicLoss: nil},
		{model.FieldEconomicLoss: 50},
	}
	assert.InDelta(t, 150.0, Summarize(rows).EconomicLoss, 1e-9)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows())

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 3.0, s.Fatalities, 1e-9)
	assert.InDelta(t, 9.0, s.Injuries, 1e-9)
	assert.InDelta(t, 6250.5, s.EconomicLoss, 1e-9)
	assert.Equal(t, 0.0, s.AvgResponseTime, "no usable response times")
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummary_Cards(t *testing.T) {
	s := Summary{Count: 12345, Fatalities: 7, Injuries: 1200, EconomicLoss: 2500000, AvgResponseTime: 14.26}

	cards := s.Cards("")
	require.Len(t, cards, 5)
	assert.Equal(t, Card{Key: "totalAccidents", Label: "Total Accidents", Value: "12,345"}, cards[0])
	assert.Equal(t, "7", cards[1].Value)
	assert.Equal(t, "1,200", cards[2].Value)
	assert.Equal(t, "₹ 2,500,000", cards[3].Value)
	assert.Equal(t, "14.3 min", cards[4].Value)

	assert.Equal(t, "$ 2,500,000", s.Cards("$")[3].Value)
}

func TestGeo(t *testing.T) {
	view := Geo(sampleRows(), geo.Default())

	require.Len(t, view.Points, 2)
	assert.Equal(t, "India", view.Points[0].Country)
	assert.Equal(t, 2, view.Points[0].Count)
	assert.Equal(t, "Germany", view.Points[1].Country)
	assert.Equal(t, []model.GroupCount{{Key: "Atlantis", Count: 1}}, view.Unmapped)
}

func TestGeo_InjectedTable(t *testing.T) {
	table := geo.Table{"Atlantis": {Lat: 1, Lng: 2}}
	view := Geo(sampleRows(), table)

	require.Len(t, view.Points, 1)
	assert.Equal(t, model.GeoCount{Country: "Atlantis", Lat: 1, Lng: 2, Count: 1}, view.Points[0])
	assert.Len(t, view.Unmapped, 2)
}

func TestGeo_NilLookup(t *testing.T) {
	view := Geo(sampleRows(), nil)
	assert.Empty(t, view.Points)
	assert.Len(t, view.Unmapped, 3)
}
