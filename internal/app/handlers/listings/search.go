package listings

import (
	"context"
	"time"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
)

const searchListingsKey = "listings.search"

// SearchListingsQuery describes catalog filters. StartDate and EndDate,
// when both set, restrict results to listings bookable for the stay.
type SearchListingsQuery struct {
	Place         string
	PriceMinCents int64
	PriceMaxCents int64
	MinRooms      int
	MinGuests     int
	StartDate     time.Time
	EndDate       time.Time
	Limit         int
	Offset        int
}

func (q SearchListingsQuery) Key() string { return searchListingsKey }

type SearchListingsHandler struct {
	UoWFactory uow.Factory
}

func (h *SearchListingsHandler) Handle(ctx context.Context, q SearchListingsQuery) (dto.ListingPageDTO, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingPageDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainlisting.SearchParams{
		Place:         q.Place,
		PriceMinCents: q.PriceMinCents,
		PriceMaxCents: q.PriceMaxCents,
		MinRooms:      q.MinRooms,
		MinGuests:     q.MinGuests,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if !q.StartDate.IsZero() && !q.EndDate.IsZero() {
		stay, err := domainrange.New(q.StartDate, q.EndDate)
		if err != nil {
			return dto.ListingPageDTO{}, err
		}
		params.Stay = &stay
	}

	result, err := unit.Listings().Search(execCtx, params)
	if err != nil {
		return dto.ListingPageDTO{}, err
	}
	return dto.MapListingPage(result), nil
}

var _ queries.Handler[SearchListingsQuery, dto.ListingPageDTO] = (*SearchListingsHandler)(nil)
