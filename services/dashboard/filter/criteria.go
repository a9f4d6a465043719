// Package filter defines the criteria a user dials in on the dashboard and
// the characteristic-specific bounds those criteria default to.
package filter

import "time"

// Bounds are the observed extremes for one characteristic: the min/max
// result value and the first/last activity date of its rows. Range widgets
// are seeded from these.
type Bounds struct {
	ValueMin float64   `json:"value_min"`
	ValueMax float64   `json:"value_max"`
	DateMin  time.Time `json:"date_min"`
	DateMax  time.Time `json:"date_max"`
}

// Criteria selects measurements: characteristic equality plus inclusive
// value and date ranges, dates compared at day granularity.
type Criteria struct {
	Characteristic string
	ValueMin       float64
	ValueMax       float64
	Start          time.Time
	End            time.Time
}

// WithDefaults fills unset range endpoints from the characteristic bounds.
// A half-specified date range falls back to the full observed span on both
// ends, matching the behavior when the user has picked only one date so far.
func (c Criteria) WithDefaults(b Bounds, haveValues bool) Criteria {
	if !haveValues {
		c.ValueMin = b.ValueMin
		c.ValueMax = b.ValueMax
	}
	if c.Start.IsZero() || c.End.IsZero() {
		c.Start = b.DateMin
		c.End = b.DateMax
	}
	return c
}
