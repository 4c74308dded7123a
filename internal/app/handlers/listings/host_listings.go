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

const listHostListingsKey = "host.listings.list"

type ListHostListingsQuery struct {
	HostID string
}

func (q ListHostListingsQuery) Key() string { return listHostListingsKey }

type ListHostListingsHandler struct {
	UoWFactory uow.Factory
}

func (h *ListHostListingsHandler) Handle(ctx context.Context, q ListHostListingsQuery) (dto.ListingPageDTO, error) {
	if strings.TrimSpace(q.HostID) == "" {
		return dto.ListingPageDTO{}, errors.New("host id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ListingPageDTO{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	items, err := unit.Listings().ByHost(execCtx, domainlisting.HostID(q.HostID))
	if err != nil {
		return dto.ListingPageDTO{}, err
	}
	return dto.MapListingPage(domainlisting.SearchResult{Items: items, Total: len(items)}), nil
}

var _ queries.Handler[ListHostListingsQuery, dto.ListingPageDTO] = (*ListHostListingsHandler)(nil)
