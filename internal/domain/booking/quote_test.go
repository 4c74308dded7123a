package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

func testListing(t *testing.T) *listing.Listing {
	t.Helper()
	l, err := listing.New(listing.CreateParams{
		ID:            "listing-1",
		Host:          "host-1",
		Title:         "Cabin by the lake",
		Capacity:      4,
		Rooms:         2,
		Washrooms:     1,
		PricePerNight: money.Must(10000, "USD"),
		Now:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return l
}

func stay(t *testing.T, startDay, endDay int) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(
		time.Date(2025, 1, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, endDay, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return r
}

func TestQuotePricesNightsTimesRate(t *testing.T) {
	l := testListing(t)

	total, err := booking.Quote(l, stay(t, 1, 4), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), total.Amount)
	assert.Equal(t, "USD", total.Currency)
}

func TestQuoteChecksCapacityBeforeDates(t *testing.T) {
	l := testListing(t)

	// Even with an invalid range the capacity error wins.
	_, err := booking.Quote(l, daterange.DateRange{}, 5)
	assert.ErrorIs(t, err, booking.ErrCapacityExceeded)

	_, err = booking.Quote(l, daterange.DateRange{}, 0)
	assert.ErrorIs(t, err, booking.ErrInvalidGuests)

	_, err = booking.Quote(l, daterange.DateRange{}, 2)
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestValidateStayRejectsPastCheckIn(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.ErrorIs(t, booking.ValidateStay(stay(t, 8, 12), now), booking.ErrCheckInInPast)
	assert.NoError(t, booking.ValidateStay(stay(t, 10, 12), now), "same-day check-in is allowed")
	assert.NoError(t, booking.ValidateStay(stay(t, 11, 14), now))
}

func TestNewBookingRecordsCreatedEvent(t *testing.T) {
	b, err := booking.New(booking.CreateParams{
		ID:        "booking-1",
		ListingID: "listing-1",
		GuestID:   "guest-1",
		Stay:      stay(t, 5, 8),
		Guests:    2,
		Total:     money.Must(30000, "USD"),
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	events := b.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "booking.created", events[0].EventName())
	assert.Equal(t, "booking-1", events[0].AggregateID())
}
