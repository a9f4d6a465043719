package dataset

import (
	"strings"
	"time"
)

// DayFormat is the canonical day-granularity date layout. Dates are stored
// and compared at this granularity; time-of-day is discarded at load.
const DayFormat = "2006-01-02"

// StationRecord is a monitoring location with a valid coordinate. Rows with
// missing or unparseable coordinates never become StationRecords.
type StationRecord struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MeasurementRecord is a single narrow result: one characteristic observed
// at one station on one day.
type MeasurementRecord struct {
	StationID      string    `json:"station_id"`
	Characteristic string    `json:"characteristic"`
	Date           time.Time `json:"date"`
	Value          float64   `json:"value"`
}

// Day returns the record date in canonical day format.
func (m MeasurementRecord) Day() string {
	return m.Date.Format(DayFormat)
}

// NormalizeID canonicalizes a station identifier so that identifiers from
// either table compare equal regardless of source formatting. Idempotent.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
