package model

import "strings"

// All is the criterion value meaning "no constraint".
const All = "All"

// GroupCount is the number of rows sharing one value of a field.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// FilterCriteria narrows the dataset by year, region and severity. Each
// criterion is "All" (or empty) or a value compared against the row's
// stringified field.
type FilterCriteria struct {
	Year     string `json:"year" yaml:"year"`
	Region   string `json:"region" yaml:"region"`
	Severity string `json:"severity" yaml:"severity"`
}

// AllCriteria returns criteria with no constraint.
func AllCriteria() FilterCriteria {
	return FilterCriteria{Year: All, Region: All, Severity: All}
}

// Normalize trims each criterion and maps empty values to "All".
func (c FilterCriteria) Normalize() FilterCriteria {
	norm := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return All
		}
		return s
	}
	return FilterCriteria{Year: norm(c.Year), Region: norm(c.Region), Severity: norm(c.Severity)}
}

// IsAll reports whether no criterion constrains the rows.
func (c FilterCriteria) IsAll() bool {
	n := c.Normalize()
	return n.Year == All && n.Region == All && n.Severity == All
}

// CrossTabCell counts rows matching one value of each of two fields.
type CrossTabCell struct {
	Row   string `json:"row"`
	Col   string `json:"col"`
	Count int    `json:"count"`
}

// Point is one (x, y) pair of a scatter view.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// GeoCount is the accident count for a country placed on the map.
type GeoCount struct {
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Count   int     `json:"count"`
}
