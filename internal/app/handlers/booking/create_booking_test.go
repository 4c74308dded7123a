package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	bookinghandlers "homestay/internal/app/handlers/booking"
	"homestay/internal/app/middleware"
	"homestay/internal/app/uow"
	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
	"homestay/internal/infra/storage/memory"
)

type testEnv struct {
	bus          commands.Bus
	factory      *memory.Factory
	availability *memory.AvailabilityRepository
	bookings     *memory.BookingRepository
	outbox       *memory.Outbox
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	availability := memory.NewAvailabilityRepository()
	bookings := memory.NewBookingRepository()
	factory := &memory.Factory{
		ListingsRepo:     memory.NewListingRepository(availability),
		AvailabilityRepo: availability,
		BookingRepo:      bookings,
		UsersRepo:        memory.NewUserRepository(),
		SessionsStore:    memory.NewSessionStore(),
		ApplicationsRepo: memory.NewApplicationRepository(),
	}
	box := memory.NewOutbox()

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, bookinghandlers.CreateBookingCommand{}.Key(), &bookinghandlers.CreateBookingHandler{
		UoWFactory: factory,
		Outbox:     box,
	})
	bus := middleware.ChainCommands(
		base,
		middleware.Idempotency(memory.NewIdempotencyStore(), middleware.JSONResultCodec{}),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(box),
	)
	return &testEnv{bus: bus, factory: factory, availability: availability, bookings: bookings, outbox: box}
}

func (e *testEnv) seedListing(t *testing.T, alwaysAvailable bool) *domainlisting.Listing {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:                "listing-1",
		Host:              "host-1",
		Title:             "Downtown loft",
		Capacity:          4,
		Rooms:             2,
		PricePerNight:     money.Must(10000, "USD"),
		IsAlwaysAvailable: alwaysAvailable,
		Now:               time.Now(),
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, e.factory.ListingsRepo.Save(context.Background(), l))
	return l
}

func futureDay(offsetDays int) time.Time {
	return time.Now().UTC().AddDate(0, 0, offsetDays).Truncate(24 * time.Hour)
}

func bookCmd(id string, startOffset, endOffset, guests int, idempotencyKey string) bookinghandlers.CreateBookingCommand {
	return bookinghandlers.CreateBookingCommand{
		CommandID:       id,
		ListingID:       "listing-1",
		GuestID:         "guest-1",
		StartDate:       futureDay(startOffset),
		EndDate:         futureDay(endOffset),
		Guests:          guests,
		IdempotencyKeyV: idempotencyKey,
	}
}

func TestCreateBookingReservesCalendarAndPersists(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	res, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 13, 2, ""))
	require.NoError(t, err)
	assert.Equal(t, "booking-1", res.BookingID)
	assert.Equal(t, int64(30000), res.TotalCents)
	assert.Equal(t, "USD", res.Currency)

	saved, err := env.bookings.ByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.Equal(t, "guest-1", saved.GuestID)

	cal, err := env.availability.Calendar(ctx, "listing-1")
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 1)
	assert.Equal(t, domainavailability.ReasonBooking, cal.Blocks[0].Reason)
	assert.Equal(t, "booking-1", cal.Blocks[0].Reference)
}

func TestCreateBookingRejectsOverlappingStay(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	_, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 14, 2, ""))
	require.NoError(t, err)

	// Checkout day stays blocked, so the back-to-back stay conflicts too.
	_, err = commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-2", 14, 16, 2, ""))
	assert.ErrorIs(t, err, domainavailability.ErrDatesUnavailable)

	_, err = commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-3", 15, 18, 2, ""))
	require.NoError(t, err)

	_, err = env.bookings.ByID(ctx, "booking-2")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound, "rejected booking must not be persisted")
}

func TestCreateBookingAlwaysAvailableAllowsOverlap(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, true)
	ctx := context.Background()

	_, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 14, 2, ""))
	require.NoError(t, err)

	_, err = commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-2", 12, 15, 2, ""))
	require.NoError(t, err)

	cal, err := env.availability.Calendar(ctx, "listing-1")
	require.NoError(t, err)
	assert.Empty(t, cal.Blocks)
}

func TestCreateBookingValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	_, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 13, 9, ""))
	assert.ErrorIs(t, err, domainbooking.ErrCapacityExceeded)

	_, err = commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-2", -5, 3, 2, ""))
	assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)

	cmd := bookCmd("booking-3", 10, 13, 2, "")
	cmd.ListingID = "missing"
	_, err = commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](ctx, env.bus, cmd)
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)
}

func TestCreateBookingIdempotencyReplaysFirstResult(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	first, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 13, 2, "idem-1"))
	require.NoError(t, err)

	// A retry with the same key must not create a second booking even
	// though the dates are now blocked.
	replay, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-retry", 10, 13, 2, "idem-1"))
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, replay.BookingID)

	_, err = env.bookings.ByID(ctx, "booking-retry")
	assert.ErrorIs(t, err, domainbooking.ErrNotFound)
}

type sessionUnit struct {
	uow.UnitOfWork
	injected *bool
}

func (u *sessionUnit) InjectContext(ctx context.Context) context.Context {
	*u.injected = true
	return ctx
}

type sessionFactory struct {
	inner    uow.Factory
	injected *bool
}

func (f sessionFactory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	unit, err := f.inner.Begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &sessionUnit{UnitOfWork: unit, injected: f.injected}, nil
}

func TestCreateBookingSelfManagedUnitJoinsBackendSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	injected := false
	handler := &bookinghandlers.CreateBookingHandler{
		UoWFactory: sessionFactory{inner: env.factory, injected: &injected},
	}

	res, err := handler.Handle(ctx, bookCmd("booking-1", 10, 13, 2, ""))
	require.NoError(t, err)
	assert.True(t, injected, "repository calls must see the backend session")

	saved, err := env.bookings.ByID(ctx, domainbooking.BookingID(res.BookingID))
	require.NoError(t, err)
	assert.Equal(t, "guest-1", saved.GuestID)
}

func TestCreateBookingPublishesDomainEvents(t *testing.T) {
	env := newTestEnv(t)
	env.seedListing(t, false)
	ctx := context.Background()

	_, err := commands.Dispatch[bookinghandlers.CreateBookingCommand, *bookinghandlers.CreateBookingResult](
		ctx, env.bus, bookCmd("booking-1", 10, 13, 2, ""))
	require.NoError(t, err)

	published := env.outbox.Published()
	names := make([]string, 0, len(published))
	for _, rec := range published {
		names = append(names, rec.Name)
	}
	assert.Contains(t, names, "booking.created")
	assert.Contains(t, names, "availability.blocked")
}
