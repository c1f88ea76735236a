package dataset

import (
	"slices"

	"go-accident-dashboard/internal/model"
)

// Report describes how well a loaded dataset matches the expected columns.
// None of its findings stop a load; affected rows simply drop out of the
// aggregations that need the field.
type Report struct {
	MissingColumns   []string       `json:"missingColumns,omitempty"`
	ExtraColumns     []string       `json:"extraColumns,omitempty"`
	DuplicateColumns []string       `json:"duplicateColumns,omitempty"`
	NonNumeric       map[string]int `json:"nonNumeric,omitempty"`
}

// Clean reports whether the report has no findings.
func (r Report) Clean() bool {
	return len(r.MissingColumns) == 0 && len(r.ExtraColumns) == 0 &&
		len(r.DuplicateColumns) == 0 && len(r.NonNumeric) == 0
}

// Validate compares columns with the known dashboard fields and counts
// present but non-numeric values in the numeric fields.
func Validate(columns []string, rows []model.Row) Report {
	var r Report
	for _, f := range model.KnownFields {
		if !slices.Contains(columns, f) {
			r.MissingColumns = append(r.MissingColumns, f)
		}
	}
	for _, c := range columns {
		if !slices.Contains(model.KnownFields, c) {
			r.ExtraColumns = append(r.ExtraColumns, c)
		}
	}

	for _, row := range rows {
		for _, f := range model.NumericFields {
			if _, present := row.Value(f); !present {
				continue
			}
			if _, ok := row.Number(f); !ok {
				if r.NonNumeric == nil {
					r.NonNumeric = make(map[string]int)
				}
				r.NonNumeric[f]++
			}
		}
	}
	return r
}
