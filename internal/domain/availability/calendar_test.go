package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/availability"
	"homestay/internal/domain/shared/daterange"
)

func mustRange(t *testing.T, start, end time.Time) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(start, end)
	require.NoError(t, err)
	return r
}

func day(dd int) time.Time {
	return time.Date(2025, 7, dd, 0, 0, 0, 0, time.UTC)
}

func TestCanBookAlwaysAvailableIgnoresBlocks(t *testing.T) {
	cal := availability.NewCalendar("listing-1")
	now := time.Now()
	require.NoError(t, cal.BlockRange(mustRange(t, day(10), day(12)), "", now))

	stay := mustRange(t, day(10), day(12))
	assert.True(t, cal.CanBook(true, stay))
	assert.False(t, cal.CanBook(false, stay))
}

func TestReserveRejectsOverlappingStay(t *testing.T) {
	cal := availability.NewCalendar("listing-1")
	now := time.Now()

	require.NoError(t, cal.Reserve(mustRange(t, day(10), day(14)), false, "booking-1", now))
	require.Len(t, cal.Blocks, 1)
	assert.Equal(t, availability.ReasonBooking, cal.Blocks[0].Reason)

	// Checkout day counts as blocked, so a back-to-back stay conflicts.
	err := cal.Reserve(mustRange(t, day(14), day(16)), false, "booking-2", now)
	assert.ErrorIs(t, err, availability.ErrDatesUnavailable)

	require.NoError(t, cal.Reserve(mustRange(t, day(15), day(18)), false, "booking-3", now))
	assert.Len(t, cal.Blocks, 2)
}

func TestReserveOnAlwaysAvailableRecordsNothing(t *testing.T) {
	cal := availability.NewCalendar("listing-1")
	require.NoError(t, cal.Reserve(mustRange(t, day(1), day(3)), true, "booking-1", time.Now()))
	assert.Empty(t, cal.Blocks)
}

func TestBlockRangeRejectsOverlapWithExistingBlock(t *testing.T) {
	cal := availability.NewCalendar("listing-1")
	now := time.Now()
	require.NoError(t, cal.BlockRange(mustRange(t, day(10), day(12)), "maintenance", now))

	err := cal.BlockRange(mustRange(t, day(12), day(13)), "", now)
	assert.ErrorIs(t, err, availability.ErrDatesUnavailable)
}

func TestReleaseRemovesBlockByReference(t *testing.T) {
	cal := availability.NewCalendar("listing-1")
	now := time.Now()
	require.NoError(t, cal.Reserve(mustRange(t, day(10), day(14)), false, "booking-1", now))

	require.NoError(t, cal.Release("booking-1", now))
	assert.Empty(t, cal.Blocks)

	assert.ErrorIs(t, cal.Release("booking-1", now), availability.ErrRangeNotFound)
}
