package analytics

import (
	"go-accident-dashboard/internal/geo"
	"go-accident-dashboard/internal/model"
)

// GeoView places per-country accident counts on the map. Countries the
// lookup cannot resolve are listed in Unmapped instead of being dropped.
type GeoView struct {
	Points   []model.GeoCount   `json:"points"`
	Unmapped []model.GroupCount `json:"unmapped"`
}

// Geo counts rows per Country and resolves each country through lookup.
func Geo(rows []model.Row, lookup geo.Lookup) GeoView {
	view := GeoView{
		Points:   make([]model.GeoCount, 0),
		Unmapped: make([]model.GroupCount, 0),
	}
	for _, g := range GroupCount(rows, model.FieldCountry) {
		var (
			c  model.Coordinate
			ok bool
		)
		if lookup != nil {
			c, ok = lookup.Lookup(g.Key)
		}
		if !ok {
			view.Unmapped = append(view.Unmapped, g)
			continue
		}
		view.Points = append(view.Points, model.GeoCount{
			Country: g.Key,
			Lat:     c.Lat,
			Lng:     c.Lng,
			Count:   g.Count,
		})
	}
	return view
}
