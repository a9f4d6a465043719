package filter

import (
	"testing"
	"time"
)

func d(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func testBounds() Bounds {
	return Bounds{
		ValueMin: 1, ValueMax: 9,
		DateMin: d("2020-01-01"), DateMax: d("2020-12-31"),
	}
}

func TestWithDefaultsFillsUnsetValueRange(t *testing.T) {
	c := Criteria{Characteristic: "Lead"}.WithDefaults(testBounds(), false)
	if c.ValueMin != 1 || c.ValueMax != 9 {
		t.Errorf("expected value range [1,9], got [%v,%v]", c.ValueMin, c.ValueMax)
	}
	if !c.Start.Equal(d("2020-01-01")) || !c.End.Equal(d("2020-12-31")) {
		t.Errorf("expected full date span, got [%v,%v]", c.Start, c.End)
	}
}

func TestWithDefaultsKeepsExplicitRanges(t *testing.T) {
	c := Criteria{
		Characteristic: "Lead",
		ValueMin:       2, ValueMax: 8,
		Start: d("2020-03-01"), End: d("2020-04-01"),
	}.WithDefaults(testBounds(), true)

	if c.ValueMin != 2 || c.ValueMax != 8 {
		t.Errorf("explicit value range overwritten: [%v,%v]", c.ValueMin, c.ValueMax)
	}
	if !c.Start.Equal(d("2020-03-01")) || !c.End.Equal(d("2020-04-01")) {
		t.Errorf("explicit date range overwritten: [%v,%v]", c.Start, c.End)
	}
}

// A date widget that has only one endpoint picked so far must fall back to
// the full observed span on both ends, not fail.
func TestWithDefaultsSingleDateFallsBackToFullSpan(t *testing.T) {
	onlyStart := Criteria{Characteristic: "Lead", Start: d("2020-03-01")}.WithDefaults(testBounds(), false)
	if !onlyStart.Start.Equal(d("2020-01-01")) || !onlyStart.End.Equal(d("2020-12-31")) {
		t.Errorf("start-only range did not fall back: [%v,%v]", onlyStart.Start, onlyStart.End)
	}

	onlyEnd := Criteria{Characteristic: "Lead", End: d("2020-04-01")}.WithDefaults(testBounds(), false)
	if !onlyEnd.Start.Equal(d("2020-01-01")) || !onlyEnd.End.Equal(d("2020-12-31")) {
		t.Errorf("end-only range did not fall back: [%v,%v]", onlyEnd.Start, onlyEnd.End)
	}
}
