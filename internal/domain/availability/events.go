package availability

import (
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
)

type BlockedEvent struct {
	ListingID listing.ListingID
	Range     daterange.DateRange
	Reason    BlockReason
	At        time.Time
}

func (e BlockedEvent) EventName() string     { return "availability.blocked" }
func (e BlockedEvent) AggregateID() string   { return string(e.ListingID) }
func (e BlockedEvent) OccurredAt() time.Time { return e.At }

type ReleasedEvent struct {
	ListingID listing.ListingID
	Range     daterange.DateRange
	At        time.Time
}

func (e ReleasedEvent) EventName() string     { return "availability.released" }
func (e ReleasedEvent) AggregateID() string   { return string(e.ListingID) }
func (e ReleasedEvent) OccurredAt() time.Time { return e.At }
