package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/filter"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DayFormat, s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

func newTestStore(t *testing.T, stations []StationRecord, measurements []MeasurementRecord) *Store {
	t.Helper()
	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)

	ctx := context.Background()
	if err := store.ReplaceStations(ctx, stations); err != nil {
		t.Fatalf("ReplaceStations: %v", err)
	}
	if err := store.ReplaceMeasurements(ctx, measurements); err != nil {
		t.Fatalf("ReplaceMeasurements: %v", err)
	}
	return store
}

func leadRows(t *testing.T) []MeasurementRecord {
	return []MeasurementRecord{
		{StationID: "s1", Characteristic: "Lead", Date: day(t, "2020-01-01"), Value: 5},
		{StationID: "s1", Characteristic: "Lead", Date: day(t, "2020-06-01"), Value: 15},
		{StationID: "s2", Characteristic: "Lead", Date: day(t, "2020-03-01"), Value: 10},
		{StationID: "s3", Characteristic: "Zinc", Date: day(t, "2020-02-01"), Value: 2},
	}
}

func TestDistinctCharacteristicsFirstSeenOrder(t *testing.T) {
	rows := []MeasurementRecord{
		{StationID: "s1", Characteristic: "Zinc", Date: day(t, "2020-01-01"), Value: 1},
		{StationID: "s1", Characteristic: "Lead", Date: day(t, "2020-01-02"), Value: 2},
		{StationID: "s1", Characteristic: "Zinc", Date: day(t, "2020-01-03"), Value: 3},
		{StationID: "s1", Characteristic: "Arsenic", Date: day(t, "2020-01-04"), Value: 4},
	}
	store := newTestStore(t, nil, rows)

	names, err := store.DistinctCharacteristics(context.Background())
	if err != nil {
		t.Fatalf("DistinctCharacteristics: %v", err)
	}
	want := []string{"Zinc", "Lead", "Arsenic"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestBoundsMatchActualExtremes(t *testing.T) {
	store := newTestStore(t, nil, leadRows(t))

	bounds, err := store.Bounds(context.Background(), "Lead")
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if bounds.ValueMin != 5 || bounds.ValueMax != 15 {
		t.Errorf("expected value bounds [5,15], got [%v,%v]", bounds.ValueMin, bounds.ValueMax)
	}
	if !bounds.DateMin.Equal(day(t, "2020-01-01")) || !bounds.DateMax.Equal(day(t, "2020-06-01")) {
		t.Errorf("unexpected date bounds [%v,%v]", bounds.DateMin, bounds.DateMax)
	}
}

func TestBoundsEmptySelection(t *testing.T) {
	store := newTestStore(t, nil, leadRows(t))

	_, err := store.Bounds(context.Background(), "Mercury")
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}
}

func TestFilterMeasurementsInclusiveBoundaries(t *testing.T) {
	store := newTestStore(t, nil, leadRows(t))
	ctx := context.Background()

	base := filter.Criteria{
		Characteristic: "Lead",
		ValueMin:       5, ValueMax: 15,
		Start: day(t, "2020-01-01"), End: day(t, "2020-06-01"),
	}

	cases := []struct {
		name     string
		criteria filter.Criteria
		want     int
	}{
		{"endpoints included", base, 3},
		{"value just above min excludes endpoint row", with(base, func(c *filter.Criteria) { c.ValueMin = 5.0001 }), 2},
		{"value just below max excludes endpoint row", with(base, func(c *filter.Criteria) { c.ValueMax = 14.9999 }), 2},
		{"start day after first excludes it", with(base, func(c *filter.Criteria) { c.Start = day(t, "2020-01-02") }), 2},
		{"end day before last excludes it", with(base, func(c *filter.Criteria) { c.End = day(t, "2020-05-31") }), 2},
		{"characteristic equality is exact", with(base, func(c *filter.Criteria) { c.Characteristic = "lead" }), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, err := store.FilterMeasurements(ctx, tc.criteria)
			if err != nil {
				t.Fatalf("FilterMeasurements: %v", err)
			}
			if len(rows) != tc.want {
				t.Errorf("expected %d rows, got %d: %+v", tc.want, len(rows), rows)
			}
			for _, m := range rows {
				if m.Characteristic != tc.criteria.Characteristic {
					t.Errorf("row with characteristic %q leaked through", m.Characteristic)
				}
				if m.Value < tc.criteria.ValueMin || m.Value > tc.criteria.ValueMax {
					t.Errorf("row value %v outside [%v,%v]", m.Value, tc.criteria.ValueMin, tc.criteria.ValueMax)
				}
				if m.Date.Before(tc.criteria.Start) || m.Date.After(tc.criteria.End) {
					t.Errorf("row date %v outside range", m.Date)
				}
			}
		})
	}
}

func with(c filter.Criteria, mod func(*filter.Criteria)) filter.Criteria {
	mod(&c)
	return c
}

func TestFullRangeRoundTrip(t *testing.T) {
	store := newTestStore(t, nil, leadRows(t))
	ctx := context.Background()

	bounds, err := store.Bounds(ctx, "Lead")
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	criteria := filter.Criteria{Characteristic: "Lead"}.WithDefaults(bounds, false)

	rows, err := store.FilterMeasurements(ctx, criteria)
	if err != nil {
		t.Fatalf("FilterMeasurements: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("full default range should return every Lead row, got %d", len(rows))
	}
}

func TestResolveStationsIntersection(t *testing.T) {
	stations := []StationRecord{
		{ID: "s1", Lat: 40.0, Lon: -75.0},
		{ID: "s9", Lat: 10.0, Lon: 10.0}, // not referenced by any measurement
	}
	store := newTestStore(t, stations, leadRows(t))
	ctx := context.Background()

	criteria := filter.Criteria{
		Characteristic: "Lead",
		ValueMin:       0, ValueMax: 20,
		Start: day(t, "2020-01-01"), End: day(t, "2020-12-31"),
	}

	resolved, err := store.ResolveStations(ctx, criteria)
	if err != nil {
		t.Fatalf("ResolveStations: %v", err)
	}
	// s2 never made it into the station table (no valid coordinate), s9 is
	// unreferenced, so only s1 resolves.
	if len(resolved) != 1 || resolved[0].ID != "s1" {
		t.Fatalf("expected resolved set {s1}, got %+v", resolved)
	}
}

func TestResolveStationsEmptyIsNotAnError(t *testing.T) {
	store := newTestStore(t, nil, leadRows(t))

	resolved, err := store.ResolveStations(context.Background(), filter.Criteria{
		Characteristic: "Lead",
		ValueMin:       0, ValueMax: 20,
		Start: day(t, "2020-01-01"), End: day(t, "2020-12-31"),
	})
	if err != nil {
		t.Fatalf("expected no error for empty resolution, got %v", err)
	}
	if len(resolved) != 0 {
		t.Fatalf("expected empty set, got %+v", resolved)
	}
}

// End-to-end scenario: normalization joins the tables, filtering keeps all
// Lead rows, the map resolves only the coordinate-valid station while the
// trend data still carries the unresolved station's rows.
func TestLeadScenario(t *testing.T) {
	stationCSV := "MonitoringLocationIdentifier,LatitudeMeasure,LongitudeMeasure\n" +
		"S1 ,40.0,-75.0\n" +
		"s2,,-76.0\n"
	measurementCSV := "MonitoringLocationIdentifier,CharacteristicName,ActivityStartDate,ResultMeasureValue\n" +
		"s1,Lead,2020-01-01,5\n" +
		"s1,Lead,2020-06-01,15\n" +
		"s2,Lead,2020-03-01,10\n"

	stations, err := LoadStations([]byte(stationCSV))
	if err != nil {
		t.Fatalf("LoadStations: %v", err)
	}
	measurements, err := LoadMeasurements([]byte(measurementCSV))
	if err != nil {
		t.Fatalf("LoadMeasurements: %v", err)
	}
	store := newTestStore(t, stations, measurements)
	ctx := context.Background()

	criteria := filter.Criteria{
		Characteristic: "Lead",
		ValueMin:       0, ValueMax: 20,
		Start: day(t, "2020-01-01"), End: day(t, "2020-12-31"),
	}

	rows, err := store.FilterMeasurements(ctx, criteria)
	if err != nil {
		t.Fatalf("FilterMeasurements: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected all 3 Lead rows, got %d", len(rows))
	}

	resolved, err := store.ResolveStations(ctx, criteria)
	if err != nil {
		t.Fatalf("ResolveStations: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != "s1" {
		t.Fatalf("expected map set {s1}, got %+v", resolved)
	}

	// The trend input is the filtered set, so s2's row is still present
	// even though the map dropped it.
	seenS2 := false
	for _, m := range rows {
		if m.StationID == "s2" {
			seenS2 = true
		}
	}
	if !seenS2 {
		t.Error("filtered set lost s2's measurement; trend data must keep it")
	}
}
