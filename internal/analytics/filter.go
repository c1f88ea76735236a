package analytics

import (
	"slices"
	"strings"

	"go-accident-dashboard/internal/model"
)

// Filter returns the rows matching every criterion, in input order. The
// result is always a new slice, even when nothing is filtered out.
func Filter(rows []model.Row, criteria model.FilterCriteria) []model.Row {
	c := criteria.Normalize()
	out := make([]model.Row, 0, len(rows))
	for _, row := range rows {
		if matches(row, model.FieldYear, c.Year) &&
			matches(row, model.FieldRegion, c.Region) &&
			matches(row, model.FieldSeverity, c.Severity) {
			out = append(out, row)
		}
	}
	return out
}

// matches compares the stringified field with want. A missing field only
// matches "All".
func matches(row model.Row, field, want string) bool {
	if want == model.All {
		return true
	}
	got, ok := row.String(field)
	return ok && got == want
}

// CriteriaFromQuery builds criteria from query parameters named year,
// region and severity. Missing parameters mean "All".
func CriteriaFromQuery(get func(string) string) model.FilterCriteria {
	return model.FilterCriteria{
		Year:     get("year"),
		Region:   get("region"),
		Severity: get("severity"),
	}.Normalize()
}

// FilterOptions holds the selectable values for each criterion. Every list
// starts with "All".
type FilterOptions struct {
	Years      []string `json:"years"`
	Regions    []string `json:"regions"`
	Severities []string `json:"severities"`
}

// Options lists the distinct years (numeric order), regions and severities
// (lexical order) found in rows.
func Options(rows []model.Row) FilterOptions {
	years := Distinct(rows, model.FieldYear)
	slices.SortStableFunc(years, compareNumericKeys)

	regions := Distinct(rows, model.FieldRegion)
	slices.SortFunc(regions, strings.Compare)

	severities := Distinct(rows, model.FieldSeverity)
	slices.SortFunc(severities, strings.Compare)

	return FilterOptions{
		Years:      append([]string{model.All}, years...),
		Regions:    append([]string{model.All}, regions...),
		Severities: append([]string{model.All}, severities...),
	}
}
