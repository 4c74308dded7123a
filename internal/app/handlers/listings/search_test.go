package listings_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/dto"
	listinghandlers "homestay/internal/app/handlers/listings"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
	"homestay/internal/infra/storage/memory"
)

type searchEnv struct {
	handler      *listinghandlers.SearchListingsHandler
	listings     *memory.ListingRepository
	availability *memory.AvailabilityRepository
}

func newSearchEnv(t *testing.T) *searchEnv {
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
	return &searchEnv{
		handler:      &listinghandlers.SearchListingsHandler{UoWFactory: factory},
		listings:     listings,
		availability: availability,
	}
}

func (e *searchEnv) seed(t *testing.T, id, state string, priceCents int64, capacity int, alwaysAvailable bool) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:                domainlisting.ListingID(id),
		Host:              "host-1",
		Title:             "Listing " + id,
		Capacity:          capacity,
		Rooms:             capacity / 2,
		Location:          domainlisting.Location{State: state, Country: "India"},
		PricePerNight:     money.Must(priceCents, "USD"),
		IsAlwaysAvailable: alwaysAvailable,
		Now:               time.Now(),
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, e.listings.Save(context.Background(), l))
}

func ids(page dto.ListingPageDTO) []string {
	out := make([]string, 0, len(page.Items))
	for _, item := range page.Items {
		out = append(out, item.ID)
	}
	return out
}

func TestSearchFiltersByPlaceAndCapacity(t *testing.T) {
	env := newSearchEnv(t)
	env.seed(t, "goa-small", "Goa", 5000, 2, true)
	env.seed(t, "goa-large", "Goa", 9000, 6, true)
	env.seed(t, "kerala", "Kerala", 4000, 4, true)

	page, err := env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{Place: "goa"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"goa-small", "goa-large"}, ids(page), "sorted by price ascending")

	page, err = env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{Place: "goa", MinGuests: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"goa-large"}, ids(page))
}

func TestSearchFiltersByPriceRange(t *testing.T) {
	env := newSearchEnv(t)
	env.seed(t, "cheap", "Goa", 3000, 2, true)
	env.seed(t, "mid", "Goa", 6000, 2, true)
	env.seed(t, "expensive", "Goa", 12000, 2, true)

	page, err := env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{
		PriceMinCents: 4000,
		PriceMaxCents: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mid"}, ids(page))
}

func TestSearchWithStayExcludesBlockedListings(t *testing.T) {
	env := newSearchEnv(t)
	env.seed(t, "open", "Goa", 5000, 2, true)
	env.seed(t, "blocked", "Goa", 4000, 2, false)

	ctx := context.Background()
	cal, err := env.availability.Calendar(ctx, "blocked")
	require.NoError(t, err)
	window, err := daterange.New(
		time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, cal.Reserve(window, false, "booking-1", time.Now()))
	require.NoError(t, env.availability.Save(ctx, cal))

	page, err := env.handler.Handle(ctx, listinghandlers.SearchListingsQuery{
		StartDate: time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"open"}, ids(page), "overlap with a booking hides the listing")

	page, err = env.handler.Handle(ctx, listinghandlers.SearchListingsQuery{
		StartDate: time.Date(2026, 5, 16, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 19, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"open", "blocked"}, ids(page))
}

func TestSearchInvalidStayFails(t *testing.T) {
	env := newSearchEnv(t)
	env.seed(t, "goa", "Goa", 5000, 2, true)

	_, err := env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{
		StartDate: time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestSearchPaging(t *testing.T) {
	env := newSearchEnv(t)
	env.seed(t, "a", "Goa", 1000, 2, true)
	env.seed(t, "b", "Goa", 2000, 2, true)
	env.seed(t, "c", "Goa", 3000, 2, true)

	page, err := env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, []string{"a", "b"}, ids(page))

	page, err = env.handler.Handle(context.Background(), listinghandlers.SearchListingsQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids(page))
}
