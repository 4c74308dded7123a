package me

import (
	"context"
	"errors"
	"sort"
	"strings"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const listGuestBookingsKey = "me.bookings.list"

type ListGuestBookingsQuery struct {
	GuestID string
}

func (q ListGuestBookingsQuery) Key() string { return listGuestBookingsKey }

type GuestBookingCollection struct {
	Items []dto.GuestBookingDTO `json:"items"`
}

type ListGuestBookingsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListGuestBookingsHandler) Handle(ctx context.Context, q ListGuestBookingsQuery) (GuestBookingCollection, error) {
	guestID := strings.TrimSpace(q.GuestID)
	if guestID == "" {
		return GuestBookingCollection{}, errors.New("guest id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return GuestBookingCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	bookings, err := unit.Bookings().ListByGuest(execCtx, guestID)
	if err != nil {
		return GuestBookingCollection{}, err
	}

	items := make([]dto.GuestBookingDTO, 0, len(bookings))
	for _, b := range bookings {
		l, err := unit.Listings().ByID(execCtx, b.ListingID)
		if err != nil {
			if !errors.Is(err, domainlisting.ErrNotFound) {
				return GuestBookingCollection{}, err
			}
			// Bookings outlive their listing; render without a snapshot.
			l = nil
		}
		items = append(items, dto.MapGuestBooking(b, l))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return GuestBookingCollection{Items: items}, nil
}

var _ queries.Handler[ListGuestBookingsQuery, GuestBookingCollection] = (*ListGuestBookingsHandler)(nil)
