package listing

import "time"

type CreatedEvent struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e CreatedEvent) EventName() string     { return "listing.created" }
func (e CreatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e CreatedEvent) OccurredAt() time.Time { return e.At }

type UpdatedEvent struct {
	ListingID ListingID
	At        time.Time
}

func (e UpdatedEvent) EventName() string     { return "listing.updated" }
func (e UpdatedEvent) AggregateID() string   { return string(e.ListingID) }
func (e UpdatedEvent) OccurredAt() time.Time { return e.At }

type DeletedEvent struct {
	ListingID ListingID
	HostID    HostID
	At        time.Time
}

func (e DeletedEvent) EventName() string     { return "listing.deleted" }
func (e DeletedEvent) AggregateID() string   { return string(e.ListingID) }
func (e DeletedEvent) OccurredAt() time.Time { return e.At }
