package model

import "go-accident-dashboard/pkg/utils"

// Column names of the accident dataset. They are matched exactly,
// including case and spacing.
const (
	FieldYear           = "Year"
	FieldMonth          = "Month"
	FieldRegion         = "Region"
	FieldCountry        = "Country"
	FieldRoadType       = "Road Type"
	FieldWeather        = "Weather Conditions"
	FieldSeverity       = "Accident Severity"
	FieldTimeOfDay      = "Time of Day"
	FieldSpeedLimit     = "Speed Limit"
	FieldDriverAgeGroup = "Driver Age Group"
	FieldCause          = "Accident Cause"
	FieldFatalities     = "Number of Fatalities"
	FieldInjuries       = "Number of Injuries"
	FieldEconomicLoss   = "Economic Loss"
	FieldResponseTime   = "Emergency Response Time"
)

// KnownFields lists every column the dashboard reads, in dataset order.
var KnownFields = []string{
	FieldYear, FieldMonth, FieldRegion, FieldCountry, FieldRoadType,
	FieldWeather, FieldSeverity, FieldTimeOfDay, FieldSpeedLimit,
	FieldDriverAgeGroup, FieldCause, FieldFatalities, FieldInjuries,
	FieldEconomicLoss, FieldResponseTime,
}

// NumericFields are the columns expected to hold numbers.
var NumericFields = []string{
	FieldYear, FieldSpeedLimit, FieldFatalities, FieldInjuries,
	FieldEconomicLoss, FieldResponseTime,
}

// Row is one accident record keyed by column name. Values are int, float64,
// string, bool or nil. Rows are never modified after loading.
type Row map[string]interface{}

// Value returns the raw value of field and whether it is present and non-nil.
func (r Row) Value(field string) (interface{}, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the stringified value of field. Absent and nil values
// report false; an empty string is returned as-is with true.
func (r Row) String(field string) (string, bool) {
	v, ok := r.Value(field)
	if !ok {
		return "", false
	}
	return utils.FormatValue(v)
}

// Key returns the stringified value of field when it is usable as a group
// key, i.e. present, non-nil and non-empty.
func (r Row) Key(field string) (string, bool) {
	s, ok := r.String(field)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Number returns field as a float64 when it holds a finite number or a
// string that parses as one.
func (r Row) Number(field string) (float64, bool) {
	v, ok := r.Value(field)
	if !ok {
		return 0, false
	}
	return utils.ToFloat(v)
}
