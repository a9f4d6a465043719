package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Required column names. Fixed, case-sensitive, matching the WQX narrow
// result export schema.
const (
	ColStationID      = "MonitoringLocationIdentifier"
	ColLatitude       = "LatitudeMeasure"
	ColLongitude      = "LongitudeMeasure"
	ColCharacteristic = "CharacteristicName"
	ColActivityDate   = "ActivityStartDate"
	ColResultValue    = "ResultMeasureValue"
)

// MissingColumnsError reports every required column absent from an uploaded
// header, so the user can fix the file in one round trip.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required column(s): " + strings.Join(e.Columns, ", ")
}

// schema maps required column names to their index in the header row,
// validated once at load time.
type schema map[string]int

func buildSchema(header []string, required []string) (schema, error) {
	idx := make(schema, len(required))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	return idx, nil
}

func (s schema) field(row []string, col string) string {
	i := s[col]
	if i >= len(row) {
		return ""
	}
	return row[i]
}

// activityDateLayouts are the accepted date spellings, tried in order.
// Whatever matches is truncated to day granularity.
var activityDateLayouts = []string{
	DayFormat,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"1/2/2006",
}

func parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range activityDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

// LoadStations parses a station CSV into StationRecords. Station identifiers
// are normalized and rows with a missing or unparseable coordinate are
// dropped. A structurally unparseable file or a missing required column
// fails the whole load.
func LoadStations(raw []byte) ([]StationRecord, error) {
	rows, sch, err := readTable(raw, []string{ColStationID, ColLatitude, ColLongitude})
	if err != nil {
		return nil, fmt.Errorf("station table: %w", err)
	}

	stations := make([]StationRecord, 0, len(rows))
	for _, row := range rows {
		lat, okLat := parseFloat(sch.field(row, ColLatitude))
		lon, okLon := parseFloat(sch.field(row, ColLongitude))
		if !okLat || !okLon {
			continue
		}
		stations = append(stations, StationRecord{
			ID:  NormalizeID(sch.field(row, ColStationID)),
			Lat: lat,
			Lon: lon,
		})
	}
	return stations, nil
}

// LoadMeasurements parses a narrow result CSV into MeasurementRecords.
// Rows whose activity date or result value fails to parse are dropped.
func LoadMeasurements(raw []byte) ([]MeasurementRecord, error) {
	required := []string{ColStationID, ColCharacteristic, ColActivityDate, ColResultValue}
	rows, sch, err := readTable(raw, required)
	if err != nil {
		return nil, fmt.Errorf("narrow result table: %w", err)
	}

	measurements := make([]MeasurementRecord, 0, len(rows))
	for _, row := range rows {
		date, okDate := parseDay(sch.field(row, ColActivityDate))
		value, okValue := parseFloat(sch.field(row, ColResultValue))
		if !okDate || !okValue {
			continue
		}
		measurements = append(measurements, MeasurementRecord{
			StationID:      NormalizeID(sch.field(row, ColStationID)),
			Characteristic: strings.TrimSpace(sch.field(row, ColCharacteristic)),
			Date:           date,
			Value:          value,
		})
	}
	return measurements, nil
}

// readTable parses the raw bytes as CSV, validates the header against the
// required columns and returns the data rows plus the resolved schema.
func readTable(raw []byte, required []string) ([][]string, schema, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1 // ragged rows are handled per field

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("empty file: header row is required")
	}

	sch, err := buildSchema(records[0], required)
	if err != nil {
		return nil, nil, err
	}
	return records[1:], sch, nil
}
