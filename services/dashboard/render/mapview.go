// Package render turns filtered query results into the two dashboard
// visuals: the station map model consumed by the browser map widget and the
// per-station trend chart rendered server-side to PNG.
package render

import (
	"errors"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/dataset"
)

// ErrNoStations is returned when a map view is requested for an empty
// resolved station set; callers check emptiness first and render a message.
var ErrNoStations = errors.New("no stations to map")

// Marker is one station pin, labeled with the normalized identifier.
type Marker struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapView is everything the map widget needs: a center point and one marker
// per resolved station.
type MapView struct {
	CenterLat float64  `json:"center_lat"`
	CenterLon float64  `json:"center_lon"`
	Markers   []Marker `json:"markers"`
}

// NewMapView centers the map on the arithmetic mean of the resolved
// coordinates and places one marker per station.
func NewMapView(stations []dataset.StationRecord) (MapView, error) {
	if len(stations) == 0 {
		return MapView{}, ErrNoStations
	}

	view := MapView{Markers: make([]Marker, 0, len(stations))}
	var sumLat, sumLon float64
	for _, st := range stations {
		sumLat += st.Lat
		sumLon += st.Lon
		view.Markers = append(view.Markers, Marker{ID: st.ID, Lat: st.Lat, Lon: st.Lon})
	}
	view.CenterLat = sumLat / float64(len(stations))
	view.CenterLon = sumLon / float64(len(stations))
	return view, nil
}
