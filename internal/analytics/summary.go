package analytics

import (
	"fmt"

	"go-accident-dashboard/internal/model"
	"go-accident-dashboard/pkg/utils"
)

// DefaultCurrency prefixes the economic loss card.
const DefaultCurrency = "₹"

// Summary holds the scalar totals shown above the charts.
type Summary struct {
	Count           int     `json:"count"`
	Fatalities      float64 `json:"fatalities"`
	Injuries        float64 `json:"injuries"`
	EconomicLoss    float64 `json:"economicLoss"`
	AvgResponseTime float64 `json:"avgResponseTime"`
	// ResponseSamples is the number of rows the average was taken over.
	ResponseSamples int `json:"responseSamples"`
}

// Summarize totals fatalities, injuries and economic loss over rows,
// counting missing or non-numeric values as 0. The response time average
// only covers rows with a numeric value and is 0 when there are none.
func Summarize(rows []model.Row) Summary {
	s := Summary{Count: len(rows)}
	var responseTotal float64

	for _, row := range rows {
		s.Fatalities += number(row, model.FieldFatalities)
		s.Injuries += number(row, model.FieldInjuries)
		s.EconomicLoss += number(row, model.FieldEconomicLoss)

		if rt, ok := row.Number(model.FieldResponseTime); ok {
			responseTotal += rt
			s.ResponseSamples++
		}
	}

	if s.ResponseSamples > 0 {
		s.AvgResponseTime = responseTotal / float64(s.ResponseSamples)
	}
	return s
}

func number(row model.Row, field string) float64 {
	v, _ := row.Number(field)
	return v
}

// Card is one formatted summary figure.
type Card struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Cards formats the summary for display. An empty currency uses
// DefaultCurrency.
func (s Summary) Cards(currency string) []Card {
	if currency == "" {
		currency = DefaultCurrency
	}
	return []Card{
		{Key: "totalAccidents", Label: "Total Accidents", Value: utils.FormatNumber(float64(s.Count))},
		{Key: "totalFatalities", Label: "Total Fatalities", Value: utils.FormatNumber(s.Fatalities)},
		{Key: "totalInjuries", Label: "Total Injuries", Value: utils.FormatNumber(s.Injuries)},
		{Key: "totalLoss", Label: "Economic Loss", Value: currency + " " + utils.FormatNumber(s.EconomicLoss)},
		{Key: "avgResponseTime", Label: "Avg Response Time", Value: fmt.Sprintf("%.1f min", s.AvgResponseTime)},
	}
}
