package daterange_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/shared/daterange"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := daterange.New(day(2025, 3, 10), day(2025, 3, 5))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	_, err = daterange.New(day(2025, 3, 10), day(2025, 3, 10))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestOverlapsIsInclusiveOnBoundaries(t *testing.T) {
	base, err := daterange.New(day(2025, 3, 10), day(2025, 3, 15))
	require.NoError(t, err)

	touchingEnd, err := daterange.New(day(2025, 3, 15), day(2025, 3, 20))
	require.NoError(t, err)
	assert.True(t, base.Overlaps(touchingEnd), "shared boundary day must conflict")

	touchingStart, err := daterange.New(day(2025, 3, 5), day(2025, 3, 10))
	require.NoError(t, err)
	assert.True(t, base.Overlaps(touchingStart))

	inside, err := daterange.New(day(2025, 3, 11), day(2025, 3, 14))
	require.NoError(t, err)
	assert.True(t, base.Overlaps(inside))

	disjoint, err := daterange.New(day(2025, 3, 16), day(2025, 3, 20))
	require.NoError(t, err)
	assert.False(t, base.Overlaps(disjoint))
}

func TestNightsRoundsPartialDaysUp(t *testing.T) {
	whole, err := daterange.New(day(2025, 1, 1), day(2025, 1, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, whole.Nights())

	partial, err := daterange.New(
		time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 3, 11, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 2, partial.Nights())

	short, err := daterange.New(
		time.Date(2025, 1, 1, 22, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Equal(t, 1, short.Nights())
}

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	stamp := time.Date(2025, 6, 15, 2, 30, 0, 0, loc)
	got := daterange.Day(stamp)
	assert.Equal(t, day(2025, 6, 14), got)
}

func TestContainsDate(t *testing.T) {
	r, err := daterange.New(day(2025, 3, 10), day(2025, 3, 15))
	require.NoError(t, err)

	assert.True(t, r.ContainsDate(day(2025, 3, 10)))
	assert.True(t, r.ContainsDate(day(2025, 3, 15)))
	assert.False(t, r.ContainsDate(day(2025, 3, 16)))
}
