package booking

import (
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

type CreatedEvent struct {
	BookingID BookingID
	ListingID listing.ListingID
	GuestID   string
	Stay      daterange.DateRange
	Guests    int
	Total     money.Money
	At        time.Time
}

func (e CreatedEvent) EventName() string     { return "booking.created" }
func (e CreatedEvent) AggregateID() string   { return string(e.BookingID) }
func (e CreatedEvent) OccurredAt() time.Time { return e.At }
