package me_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mehandlers "homestay/internal/app/handlers/me"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
	"homestay/internal/infra/storage/memory"
)

type meEnv struct {
	handler  *mehandlers.ListGuestBookingsHandler
	listings *memory.ListingRepository
	bookings *memory.BookingRepository
}

func newMeEnv(t *testing.T) *meEnv {
	t.Helper()
	availability := memory.NewAvailabilityRepository()
	listings := memory.NewListingRepository(availability)
	bookings := memory.NewBookingRepository()
	factory := &memory.Factory{
		ListingsRepo:     listings,
		AvailabilityRepo: availability,
		BookingRepo:      bookings,
		UsersRepo:        memory.NewUserRepository(),
		SessionsStore:    memory.NewSessionStore(),
		ApplicationsRepo: memory.NewApplicationRepository(),
	}
	return &meEnv{
		handler:  &mehandlers.ListGuestBookingsHandler{UoWFactory: factory},
		listings: listings,
		bookings: bookings,
	}
}

func (e *meEnv) seedListing(t *testing.T, id string, photos ...string) {
	t.Helper()
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:                domainlisting.ListingID(id),
		Host:              "host-1",
		Title:             "Listing " + id,
		Capacity:          4,
		Rooms:             2,
		PricePerNight:     money.Must(10000, "USD"),
		Photos:            photos,
		IsAlwaysAvailable: true,
		Now:               time.Now(),
	})
	require.NoError(t, err)
	l.ClearEvents()
	require.NoError(t, e.listings.Save(context.Background(), l))
}

func (e *meEnv) seedBooking(t *testing.T, id, listingID string, createdAt time.Time) {
	t.Helper()
	stay, err := daterange.New(
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	b, err := domainbooking.New(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		ListingID: domainlisting.ListingID(listingID),
		GuestID:   "guest-1",
		Stay:      stay,
		Guests:    2,
		Total:     money.Must(30000, "USD"),
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	b.ClearEvents()
	require.NoError(t, e.bookings.Save(context.Background(), b))
}

func TestListGuestBookingsIncludesListingSnapshot(t *testing.T) {
	env := newMeEnv(t)
	env.seedListing(t, "loft", "https://cdn.example.com/loft-front.jpg", "https://cdn.example.com/loft-back.jpg")
	env.seedListing(t, "cabin")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	env.seedBooking(t, "booking-old", "loft", base)
	env.seedBooking(t, "booking-new", "cabin", base.Add(time.Hour))

	result, err := env.handler.Handle(context.Background(), mehandlers.ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 2)

	assert.Equal(t, "booking-new", result.Items[0].ID, "newest booking first")

	loft := result.Items[1]
	require.NotNil(t, loft.Listing)
	assert.Equal(t, "loft", loft.Listing.ID)
	assert.Equal(t, "Listing loft", loft.Listing.Title)
	assert.Equal(t, "https://cdn.example.com/loft-front.jpg", loft.Listing.Photo, "first photo only")

	cabin := result.Items[0]
	require.NotNil(t, cabin.Listing)
	assert.Empty(t, cabin.Listing.Photo, "listing without photos has no snapshot photo")
}

func TestListGuestBookingsToleratesDeletedListing(t *testing.T) {
	env := newMeEnv(t)
	env.seedListing(t, "loft", "https://cdn.example.com/loft.jpg")
	env.seedBooking(t, "booking-1", "loft", time.Now())

	require.NoError(t, env.listings.Delete(context.Background(), "loft"))

	result, err := env.handler.Handle(context.Background(), mehandlers.ListGuestBookingsQuery{GuestID: "guest-1"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Nil(t, result.Items[0].Listing)
	assert.Equal(t, "booking-1", result.Items[0].ID)
}
