package booking

import (
	"context"
	"errors"
	"time"

	"homestay/internal/app/commands"
	"homestay/internal/app/middleware"
	"homestay/internal/app/outbox"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/events"
)

const createBookingKey = "booking.create"

var ErrUnitOfWorkRequired = errors.New("booking: unit of work required")

type CreateBookingCommand struct {
	CommandID       string
	ListingID       string
	GuestID         string
	StartDate       time.Time
	EndDate         time.Time
	Guests          int
	IdempotencyKeyV string
}

func (c CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateBookingCommand) ResultPrototype() any { return &CreateBookingResult{} }

type CreateBookingResult struct {
	BookingID  string `json:"booking_id"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

// CreateBookingHandler persists the booking and reserves the stay on the
// listing calendar inside a single unit of work. Two concurrent requests
// for overlapping dates race on the calendar save, so at most one commit
// succeeds.
type CreateBookingHandler struct {
	UoWFactory uow.Factory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	unit, ok := uow.FromContext(ctx)
	managed := false
	committed := false
	if !ok {
		if h.UoWFactory == nil {
			return nil, ErrUnitOfWorkRequired
		}
		var err error
		unit, err = h.UoWFactory.Begin(ctx, uow.TxOptions{})
		if err != nil {
			return nil, err
		}
		// Backends with session transactions need the session on the
		// context so repository calls run inside it.
		if injector, ok := unit.(interface {
			InjectContext(context.Context) context.Context
		}); ok {
			ctx = injector.InjectContext(ctx)
		}
		ctx = uow.ContextWithUnitOfWork(ctx, unit)
		managed = true
	}
	if managed {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	stay, err := domainrange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := domainbooking.ValidateStay(stay, now); err != nil {
		return nil, err
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}

	total, err := domainbooking.Quote(l, stay, cmd.Guests)
	if err != nil {
		return nil, err
	}

	calendar, err := unit.Availability().Calendar(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(cmd.CommandID),
		ListingID: l.ID,
		GuestID:   cmd.GuestID,
		Stay:      stay,
		Guests:    cmd.Guests,
		Total:     total,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if err := calendar.Reserve(stay, l.IsAlwaysAvailable, string(b.ID), now); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}

	pending := append(b.PendingEvents(), calendar.PendingEvents()...)
	b.ClearEvents()
	calendar.ClearEvents()
	if err := h.recordEvents(ctx, pending); err != nil {
		return nil, err
	}

	if managed {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}

	return &CreateBookingResult{
		BookingID:  string(b.ID),
		TotalCents: total.Amount,
		Currency:   total.Currency,
	}, nil
}

func (h *CreateBookingHandler) recordEvents(ctx context.Context, evs []events.DomainEvent) error {
	encoder := h.Encoder
	if encoder == nil {
		encoder = outbox.JSONEventEncoder{}
	}
	return outbox.RecordDomainEvents(ctx, h.Outbox, encoder, evs)
}

var _ commands.Handler[CreateBookingCommand, *CreateBookingResult] = (*CreateBookingHandler)(nil)
var _ middleware.IdempotentCommand = (*CreateBookingCommand)(nil)
