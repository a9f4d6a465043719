package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/minamoview/Minamo-water-quality-viewer/services/dashboard/filter"
)

// ErrEmptySelection is returned when a characteristic matches zero rows, so
// callers can render a message instead of range widgets.
var ErrEmptySelection = errors.New("no records found for the selected characteristic")

// Store holds one session's tables in an in-memory sqlite database and runs
// the filtering pipeline as parameterized SQL over them. Nothing is written
// to disk and the database dies with the session.
type Store struct {
	db *sql.DB
}

var storeSchema = []string{
	`CREATE TABLE stations (
        id         INTEGER PRIMARY KEY AUTOINCREMENT,
        station_id TEXT NOT NULL,
        lat        REAL NOT NULL,
        lon        REAL NOT NULL
    )`,
	`CREATE TABLE measurements (
        id             INTEGER PRIMARY KEY AUTOINCREMENT,
        station_id     TEXT NOT NULL,
        characteristic TEXT NOT NULL,
        activity_date  TEXT NOT NULL,
        result_value   REAL NOT NULL
    )`,
	`CREATE INDEX idx_measurements_characteristic ON measurements(characteristic)`,
}

// NewStore opens a fresh in-memory database with the session schema.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second pool connection would see a different empty :memory: database.
	db.SetMaxOpenConns(1)

	for _, ddl := range storeSchema {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close releases the database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// ReplaceStations swaps the station table contents for a new upload.
func (s *Store) ReplaceStations(ctx context.Context, stations []StationRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stations`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stations (station_id, lat, lon) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, st := range stations {
		if _, err := stmt.ExecContext(ctx, st.ID, st.Lat, st.Lon); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceMeasurements swaps the measurement table contents for a new upload.
// Insertion order is preserved via the rowid, which is what first-seen
// characteristic ordering is derived from.
func (s *Store) ReplaceMeasurements(ctx context.Context, measurements []MeasurementRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM measurements`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (station_id, characteristic, activity_date, result_value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range measurements {
		if _, err := stmt.ExecContext(ctx, m.StationID, m.Characteristic, m.Day(), m.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const distinctCharacteristicsSQL = `
    SELECT characteristic
    FROM measurements
    GROUP BY characteristic
    ORDER BY MIN(id)
`

// DistinctCharacteristics returns the unique characteristic names in
// first-seen file order, used to populate the selection widget.
func (s *Store) DistinctCharacteristics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, distinctCharacteristicsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

const boundsSQL = `
    SELECT MIN(result_value), MAX(result_value), MIN(activity_date), MAX(activity_date)
    FROM measurements
    WHERE characteristic = ?
`

// Bounds computes the value and date extremes over rows matching the
// characteristic. Returns ErrEmptySelection when nothing matches.
func (s *Store) Bounds(ctx context.Context, characteristic string) (filter.Bounds, error) {
	var (
		valueMin, valueMax sql.NullFloat64
		dateMin, dateMax   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, boundsSQL, characteristic).
		Scan(&valueMin, &valueMax, &dateMin, &dateMax)
	if err != nil {
		return filter.Bounds{}, err
	}
	if !valueMin.Valid || !dateMin.Valid {
		return filter.Bounds{}, ErrEmptySelection
	}

	start, err := time.Parse(DayFormat, dateMin.String)
	if err != nil {
		return filter.Bounds{}, fmt.Errorf("stored date %q: %w", dateMin.String, err)
	}
	end, err := time.Parse(DayFormat, dateMax.String)
	if err != nil {
		return filter.Bounds{}, fmt.Errorf("stored date %q: %w", dateMax.String, err)
	}

	return filter.Bounds{
		ValueMin: valueMin.Float64,
		ValueMax: valueMax.Float64,
		DateMin:  start,
		DateMax:  end,
	}, nil
}

// Stored dates are ISO day strings, so lexicographic comparison is date
// comparison and the inclusive range maps directly onto >= / <=.
const filteredMeasurementsSQL = `
    SELECT station_id, characteristic, activity_date, result_value
    FROM measurements
    WHERE characteristic = ?
      AND result_value >= ? AND result_value <= ?
      AND activity_date >= ? AND activity_date <= ?
    ORDER BY id
`

// FilterMeasurements returns the rows satisfying the criteria exactly:
// characteristic equality plus inclusive value and date ranges.
func (s *Store) FilterMeasurements(ctx context.Context, c filter.Criteria) ([]MeasurementRecord, error) {
	rows, err := s.db.QueryContext(ctx, filteredMeasurementsSQL,
		c.Characteristic, c.ValueMin, c.ValueMax,
		c.Start.Format(DayFormat), c.End.Format(DayFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	measurements := make([]MeasurementRecord, 0)
	for rows.Next() {
		var (
			m   MeasurementRecord
			day string
		)
		if err := rows.Scan(&m.StationID, &m.Characteristic, &day, &m.Value); err != nil {
			return nil, err
		}
		if m.Date, err = time.Parse(DayFormat, day); err != nil {
			return nil, fmt.Errorf("stored date %q: %w", day, err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

const resolvedStationsSQL = `
    SELECT DISTINCT s.station_id, s.lat, s.lon
    FROM stations s
    WHERE s.station_id IN (
        SELECT DISTINCT station_id
        FROM measurements
        WHERE characteristic = ?
          AND result_value >= ? AND result_value <= ?
          AND activity_date >= ? AND activity_date <= ?
    )
    ORDER BY s.station_id
`

// ResolveStations intersects the stations referenced by the filtered
// measurement set with the coordinate-valid station table. An empty result
// is not an error; the caller renders an informational message instead of
// the map.
func (s *Store) ResolveStations(ctx context.Context, c filter.Criteria) ([]StationRecord, error) {
	rows, err := s.db.QueryContext(ctx, resolvedStationsSQL,
		c.Characteristic, c.ValueMin, c.ValueMax,
		c.Start.Format(DayFormat), c.End.Format(DayFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stations := make([]StationRecord, 0)
	for rows.Next() {
		var st StationRecord
		if err := rows.Scan(&st.ID, &st.Lat, &st.Lon); err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, rows.Err()
}
