package listings

import (
	"context"
	"errors"
	"strings"

	"homestay/internal/app/dto"
	"homestay/internal/app/handlers/support"
	"homestay/internal/app/queries"
	"homestay/internal/app/uow"
	domainlisting "homestay/internal/domain/listing"
)

const getListingKey = "listings.get"

type GetListingQuery struct {
	ListingID string
}

func (q GetListingQuery) Key() string { return getListingKey }

type GetListingHandler struct {
	UoWFactory uow.Factory
}

func (h *GetListingHandler) Handle(ctx context.Context, q GetListingQuery) (*dto.ListingDTO, error) {
	if strings.TrimSpace(q.ListingID) == "" {
		return nil, errors.New("listing id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	l, err := unit.Listings().ByID(execCtx, domainlisting.ListingID(q.ListingID))
	if err != nil {
		return nil, err
	}
	result := dto.MapListing(l)
	return &result, nil
}

var _ queries.Handler[GetListingQuery, *dto.ListingDTO] = (*GetListingHandler)(nil)
