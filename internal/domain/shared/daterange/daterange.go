package daterange

import (
	"errors"
	"time"
)

var ErrInvalidRange = errors.New("daterange: end must be after start")

// DateRange is a day-granular interval. For stays Start is the check-in
// and End the check-out date; for blackout windows both endpoints count
// as blocked, so overlap tests are inclusive on both sides.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func New(start, end time.Time) (DateRange, error) {
	dr := DateRange{Start: start.UTC(), End: end.UTC()}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

func (dr DateRange) Validate() error {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ErrInvalidRange
	}
	if !dr.End.After(dr.Start) {
		return ErrInvalidRange
	}
	return nil
}

// Nights is the billing unit: the ceiling of the day-granular difference
// between end and start.
func (dr DateRange) Nights() int {
	hours := dr.End.Sub(dr.Start).Hours()
	nights := int(hours / 24)
	if float64(nights)*24 < hours {
		nights++
	}
	return nights
}

// Overlaps reports whether the ranges share at least one day. The test is
// inclusive: a range touching the other's boundary still conflicts.
func (dr DateRange) Overlaps(other DateRange) bool {
	return !dr.Start.After(other.End) && !dr.End.Before(other.Start)
}

// Contains reports whether other lies entirely within dr.
func (dr DateRange) Contains(other DateRange) bool {
	return !dr.Start.After(other.Start) && !dr.End.Before(other.End)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = t.UTC()
	return !t.Before(dr.Start) && !t.After(dr.End)
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
