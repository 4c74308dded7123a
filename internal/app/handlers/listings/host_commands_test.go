package listings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	listinghandlers "homestay/internal/app/handlers/listings"
	"homestay/internal/app/middleware"
	domainavailability "homestay/internal/domain/availability"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/infra/storage/memory"
)

type hostEnv struct {
	bus          commands.Bus
	listings     *memory.ListingRepository
	availability *memory.AvailabilityRepository
}

func newHostEnv(t *testing.T) *hostEnv {
	t.Helper()
	availability := memory.NewAvailabilityRepository()
	listings := memory.NewListingRepository(availability)
	factory := &memory.Factory{
		ListingsRepo:     listings,
		AvailabilityRepo: availability,
		BookingRepo:      memory.NewBookingRepository(),
		UsersRepo:        memory.NewUserRepository(),
		SessionsStore:    memory.NewSessionStore(),
		ApplicationsRepo: memory.NewApplicationRepository(),
	}

	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, listinghandlers.CreateHostListingCommand{}.Key(), &listinghandlers.CreateHostListingHandler{})
	commands.RegisterHandler(base, listinghandlers.UpdateHostListingCommand{}.Key(), &listinghandlers.UpdateHostListingHandler{})
	commands.RegisterHandler(base, listinghandlers.DeleteHostListingCommand{}.Key(), &listinghandlers.DeleteHostListingHandler{})

	bus := middleware.ChainCommands(base, middleware.Transaction(factory, nil))
	return &hostEnv{bus: bus, listings: listings, availability: availability}
}

func payload(excluded ...time.Time) listinghandlers.HostListingPayload {
	return listinghandlers.HostListingPayload{
		Title:              "Seaside flat",
		Description:        "Two rooms near the beach",
		EntireUnit:         true,
		Rooms:              2,
		Washrooms:          1,
		Capacity:           4,
		State:              "Goa",
		Country:            "India",
		PriceCentsPerNight: 8500,
		ExcludedDates:      excluded,
	}
}

func TestCreateHostListingWithExcludedDates(t *testing.T) {
	env := newHostEnv(t)
	ctx := context.Background()

	blocked := []time.Time{
		time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 25, 10, 30, 0, 0, time.UTC),
	}
	created, err := commands.Dispatch[listinghandlers.CreateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.CreateHostListingCommand{HostID: "host-1", Payload: payload(blocked...)})
	require.NoError(t, err)
	assert.False(t, created.IsAlwaysAvailable)
	assert.Equal(t, int64(8500), created.PricePerNight.AmountCents)
	assert.Equal(t, "USD", created.PricePerNight.Currency, "currency defaults when omitted")

	cal, err := env.availability.Calendar(ctx, domainlisting.ListingID(created.ID))
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 2)
	for _, block := range cal.Blocks {
		assert.Equal(t, domainavailability.ReasonHostBlock, block.Reason)
		assert.Equal(t, block.Range.Start, block.Range.End, "each excluded date is a single-day window")
	}
}

func TestCreateHostListingWithoutExclusionsIsAlwaysAvailable(t *testing.T) {
	env := newHostEnv(t)

	created, err := commands.Dispatch[listinghandlers.CreateHostListingCommand, *dto.ListingDTO](
		context.Background(), env.bus, listinghandlers.CreateHostListingCommand{HostID: "host-1", Payload: payload()})
	require.NoError(t, err)
	assert.True(t, created.IsAlwaysAvailable)
}

func TestUpdateHostListingReplacesHostBlocksKeepsBookings(t *testing.T) {
	env := newHostEnv(t)
	ctx := context.Background()

	oldDate := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	created, err := commands.Dispatch[listinghandlers.CreateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.CreateHostListingCommand{HostID: "host-1", Payload: payload(oldDate)})
	require.NoError(t, err)

	// Simulate an existing booking block on the calendar.
	cal, err := env.availability.Calendar(ctx, domainlisting.ListingID(created.ID))
	require.NoError(t, err)
	stay, err := daterange.New(
		time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 7, 12, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(stay, false, "booking-1", time.Now()))
	require.NoError(t, env.availability.Save(ctx, cal))

	newDate := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	updated, err := commands.Dispatch[listinghandlers.UpdateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.UpdateHostListingCommand{
			HostID:    "host-1",
			ListingID: created.ID,
			Payload:   payload(newDate),
		})
	require.NoError(t, err)
	assert.False(t, updated.IsAlwaysAvailable)

	cal, err = env.availability.Calendar(ctx, domainlisting.ListingID(created.ID))
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 2)

	var reasons []domainavailability.BlockReason
	var hostBlockStart time.Time
	for _, block := range cal.Blocks {
		reasons = append(reasons, block.Reason)
		if block.Reason == domainavailability.ReasonHostBlock {
			hostBlockStart = block.Range.Start
		}
	}
	assert.Contains(t, reasons, domainavailability.ReasonBooking)
	assert.Contains(t, reasons, domainavailability.ReasonHostBlock)
	assert.Equal(t, daterange.Day(newDate), hostBlockStart, "old host block replaced by the new one")
}

func TestUpdateHostListingRejectsForeignHost(t *testing.T) {
	env := newHostEnv(t)
	ctx := context.Background()

	created, err := commands.Dispatch[listinghandlers.CreateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.CreateHostListingCommand{HostID: "host-1", Payload: payload()})
	require.NoError(t, err)

	_, err = commands.Dispatch[listinghandlers.UpdateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.UpdateHostListingCommand{
			HostID:    "host-2",
			ListingID: created.ID,
			Payload:   payload(),
		})
	assert.ErrorIs(t, err, listinghandlers.ErrListingNotOwned)
}

func TestDeleteHostListingRemovesListingAndCalendar(t *testing.T) {
	env := newHostEnv(t)
	ctx := context.Background()

	created, err := commands.Dispatch[listinghandlers.CreateHostListingCommand, *dto.ListingDTO](
		ctx, env.bus, listinghandlers.CreateHostListingCommand{
			HostID:  "host-1",
			Payload: payload(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
		})
	require.NoError(t, err)

	_, err = commands.Dispatch[listinghandlers.DeleteHostListingCommand, *listinghandlers.DeleteHostListingResult](
		ctx, env.bus, listinghandlers.DeleteHostListingCommand{HostID: "host-1", ListingID: created.ID})
	require.NoError(t, err)

	_, err = env.listings.ByID(ctx, domainlisting.ListingID(created.ID))
	assert.ErrorIs(t, err, domainlisting.ErrNotFound)

	cal, err := env.availability.Calendar(ctx, domainlisting.ListingID(created.ID))
	require.NoError(t, err)
	assert.Empty(t, cal.Blocks, "calendar recreated lazily, without stale blocks")
}
