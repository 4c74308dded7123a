package availability

import (
	"context"
	"errors"
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
)

var (
	ErrDatesUnavailable = errors.New("availability: requested dates overlap a blackout window")
	ErrRangeNotFound    = errors.New("availability: range not found")
)

type BlockReason string

const (
	ReasonBooking   BlockReason = "BOOKING"
	ReasonHostBlock BlockReason = "HOST_BLOCK"
)

type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

// BlackoutCalendar holds the blackout windows of one listing. Stored
// ranges always mean "not bookable"; the same rule feeds booking and
// search so the two paths cannot disagree.
type BlackoutCalendar struct {
	ListingID listing.ListingID
	Blocks    []Block
	Version   int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id listing.ListingID) (*BlackoutCalendar, error)
	Save(ctx context.Context, calendar *BlackoutCalendar) error
	Delete(ctx context.Context, id listing.ListingID) error
}

func NewCalendar(id listing.ListingID) *BlackoutCalendar {
	return &BlackoutCalendar{ListingID: id}
}

// CanBook decides bookability for a requested stay. An always-available
// listing ignores its stored ranges entirely; otherwise any inclusive
// overlap with a blackout window rejects the request.
func (c *BlackoutCalendar) CanBook(alwaysAvailable bool, stay daterange.DateRange) bool {
	if alwaysAvailable {
		return true
	}
	for _, block := range c.Blocks {
		if block.Range.Overlaps(stay) {
			return false
		}
	}
	return true
}

// Reserve records a stay as a BOOKING block. Saving the mutated calendar
// in the same transaction as the booking is what closes the
// concurrent-double-booking window.
func (c *BlackoutCalendar) Reserve(stay daterange.DateRange, alwaysAvailable bool, bookingID string, now time.Time) error {
	if !c.CanBook(alwaysAvailable, stay) {
		return ErrDatesUnavailable
	}
	if alwaysAvailable {
		// Always-available listings never reject on dates, so there is
		// nothing to reserve against.
		return nil
	}
	c.append(Block{Range: stay, Reason: ReasonBooking, Reference: bookingID, CreatedAt: now.UTC()})
	c.Record(BlockedEvent{ListingID: c.ListingID, Range: stay, Reason: ReasonBooking, At: now.UTC()})
	return nil
}

// BlockRange registers a host blackout window.
func (c *BlackoutCalendar) BlockRange(r daterange.DateRange, reference string, now time.Time) error {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return ErrDatesUnavailable
		}
	}
	c.append(Block{Range: r, Reason: ReasonHostBlock, Reference: reference, CreatedAt: now.UTC()})
	c.Record(BlockedEvent{ListingID: c.ListingID, Range: r, Reason: ReasonHostBlock, At: now.UTC()})
	return nil
}

// Release removes the block carrying the given reference.
func (c *BlackoutCalendar) Release(reference string, now time.Time) error {
	idx := -1
	for i, block := range c.Blocks {
		if block.Reference == reference {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrRangeNotFound
	}
	removed := c.Blocks[idx]
	c.Blocks = append(c.Blocks[:idx], c.Blocks[idx+1:]...)
	c.Record(ReleasedEvent{ListingID: c.ListingID, Range: removed.Range, At: now.UTC()})
	return nil
}

func (c *BlackoutCalendar) append(block Block) {
	c.Blocks = append(c.Blocks, block)
}
