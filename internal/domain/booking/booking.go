package booking

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrInvalidGuests    = errors.New("booking: guests count must be positive")
	ErrCapacityExceeded = errors.New("booking: guests exceed listing capacity")
	ErrCheckInInPast    = errors.New("booking: check-in date is in the past")
	ErrNotFound         = errors.New("booking: not found")
)

type BookingID string

// Booking is immutable once created; there is no cancellation or update
// path, so the aggregate carries no state machine.
type Booking struct {
	ID        BookingID
	ListingID listing.ListingID
	GuestID   string
	Stay      daterange.DateRange
	Guests    int
	Total     money.Money
	CreatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByGuest(ctx context.Context, guestID string) ([]*Booking, error)
}

type CreateParams struct {
	ID        BookingID
	ListingID listing.ListingID
	GuestID   string
	Stay      daterange.DateRange
	Guests    int
	Total     money.Money
	CreatedAt time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, errors.New("booking: guest id required")
	}
	if err := params.Stay.Validate(); err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:        params.ID,
		ListingID: params.ListingID,
		GuestID:   params.GuestID,
		Stay:      params.Stay,
		Guests:    params.Guests,
		Total:     params.Total,
		CreatedAt: now,
	}
	b.Record(CreatedEvent{
		BookingID: b.ID,
		ListingID: b.ListingID,
		GuestID:   b.GuestID,
		Stay:      b.Stay,
		Guests:    b.Guests,
		Total:     b.Total,
		At:        now,
	})
	return b, nil
}

// ValidateStay rejects stays whose check-in lies before today (UTC).
func ValidateStay(stay daterange.DateRange, now time.Time) error {
	if daterange.Day(stay.Start).Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}
