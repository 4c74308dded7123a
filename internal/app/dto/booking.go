package dto

import (
	"time"

	"homestay/internal/domain/booking"
	"homestay/internal/domain/listing"
)

type BookingDTO struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	GuestID   string    `json:"guest_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Nights    int       `json:"nights"`
	Guests    int       `json:"guests"`
	Total     MoneyDTO  `json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

func MapBooking(b *booking.Booking) BookingDTO {
	return BookingDTO{
		ID:        string(b.ID),
		ListingID: string(b.ListingID),
		GuestID:   b.GuestID,
		StartDate: b.Stay.Start,
		EndDate:   b.Stay.End,
		Nights:    b.Stay.Nights(),
		Guests:    b.Guests,
		Total:     MapMoney(b.Total),
		CreatedAt: b.CreatedAt,
	}
}

// BookingListingDTO is the listing snapshot attached to a guest's booking,
// enough to render the list without a second request.
type BookingListingDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Photo string `json:"photo,omitempty"`
}

type GuestBookingDTO struct {
	BookingDTO
	Listing *BookingListingDTO `json:"listing"`
}

// MapGuestBooking attaches the listing snapshot when the listing still
// exists; bookings survive listing deletion with a nil snapshot.
func MapGuestBooking(b *booking.Booking, l *listing.Listing) GuestBookingDTO {
	out := GuestBookingDTO{BookingDTO: MapBooking(b)}
	if l != nil {
		snapshot := &BookingListingDTO{ID: string(l.ID), Title: l.Title}
		if len(l.Photos) > 0 {
			snapshot.Photo = l.Photos[0]
		}
		out.Listing = snapshot
	}
	return out
}
