package render

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/dataset"
)

// Series is one station's time-ordered slice of the filtered measurement
// set. Trend series are driven by filtered measurements, not by resolved
// stations, so a station without a valid coordinate still charts.
type Series struct {
	StationID string
	Dates     []time.Time
	Values    []float64
}

// PartitionByStation splits measurements into per-station series, each
// sorted ascending by activity date. Partitions come back in lexicographic
// station order so identical input always renders identically.
func PartitionByStation(measurements []dataset.MeasurementRecord) []Series {
	groups := make(map[string][]dataset.MeasurementRecord)
	for _, m := range measurements {
		groups[m.StationID] = append(groups[m.StationID], m)
	}

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	series := make([]Series, 0, len(ids))
	for _, id := range ids {
		rows := groups[id]
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

		s := Series{
			StationID: id,
			Dates:     make([]time.Time, 0, len(rows)),
			Values:    make([]float64, 0, len(rows)),
		}
		for _, m := range rows {
			s.Dates = append(s.Dates, m.Date)
			s.Values = append(s.Values, m.Value)
		}
		series = append(series, s)
	}
	return series
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Trend renders the per-station line chart for the filtered measurement set
// as PNG bytes: shared time axis, shared value axis, point markers, one
// legend entry per station.
func Trend(measurements []dataset.MeasurementRecord, characteristic string, width, height int) ([]byte, error) {
	partitions := PartitionByStation(measurements)
	if len(partitions) == 0 {
		return nil, fmt.Errorf("no measurements to chart")
	}

	series := make([]chart.Series, 0, len(partitions))
	for i, p := range partitions {
		xs, ys := p.Dates, p.Values
		// go-chart needs at least two X values to establish a range.
		if len(xs) == 1 {
			xs = append(xs, xs[0].Add(24*time.Hour))
			ys = append(ys, ys[0])
		}
		series = append(series, chart.TimeSeries{
			Name:    p.StationID,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(chart.GetDefaultColor(i)),
		})
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Trend Over Time for %s", characteristic),
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Name: "Time"},
		YAxis:      chart.YAxis{Name: "Measured Value"},
		Series:     series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render trend chart: %w", err)
	}
	return buf.Bytes(), nil
}
