package listings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"homestay/internal/app/commands"
	"homestay/internal/app/dto"
	"homestay/internal/app/uow"
	domainavailability "homestay/internal/domain/availability"
	domainlisting "homestay/internal/domain/listing"
	domainrange "homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

const (
	createHostListingKey = "host.listings.create"
	updateHostListingKey = "host.listings.update"
	deleteHostListingKey = "host.listings.delete"
)

var ErrListingNotOwned = errors.New("listings: not owned by host")

// HostListingPayload carries the host-editable attributes. Each excluded
// date becomes a single-day blackout window; a listing with no excluded
// dates is treated as always available.
type HostListingPayload struct {
	Title              string
	Description        string
	EntireUnit         bool
	Rooms              int
	Washrooms          int
	Capacity           int
	State              string
	Country            string
	Lat                float64
	Lon                float64
	PriceCentsPerNight int64
	Currency           string
	ExcludedDates      []time.Time
	Photos             []string
}

func (p HostListingPayload) nightlyRate() (money.Money, error) {
	currency := p.Currency
	if currency == "" {
		currency = "USD"
	}
	return money.New(p.PriceCentsPerNight, currency)
}

type CreateHostListingCommand struct {
	HostID  string
	Payload HostListingPayload
}

func (c CreateHostListingCommand) Key() string { return createHostListingKey }

type CreateHostListingHandler struct {
	Logger *slog.Logger
}

func (h *CreateHostListingHandler) Handle(ctx context.Context, cmd CreateHostListingCommand) (*dto.ListingDTO, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	rate, err := cmd.Payload.nightlyRate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	listingID := domainlisting.ListingID(uuid.NewString())
	l, err := domainlisting.New(domainlisting.CreateParams{
		ID:          listingID,
		Host:        domainlisting.HostID(cmd.HostID),
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		EntireUnit:  cmd.Payload.EntireUnit,
		Rooms:       cmd.Payload.Rooms,
		Washrooms:   cmd.Payload.Washrooms,
		Capacity:    cmd.Payload.Capacity,
		Location: domainlisting.Location{
			State:   cmd.Payload.State,
			Country: cmd.Payload.Country,
			Lat:     cmd.Payload.Lat,
			Lon:     cmd.Payload.Lon,
		},
		PricePerNight:     rate,
		IsAlwaysAvailable: len(cmd.Payload.ExcludedDates) == 0,
		Photos:            cmd.Payload.Photos,
		Now:               now,
	})
	if err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	calendar := domainavailability.NewCalendar(l.ID)
	if err := applyExcludedDates(calendar, cmd.Payload.ExcludedDates, now); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing created", "listing_id", l.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListing(l)
	return &result, nil
}

type UpdateHostListingCommand struct {
	HostID    string
	ListingID string
	Payload   HostListingPayload
}

func (c UpdateHostListingCommand) Key() string { return updateHostListingKey }

type UpdateHostListingHandler struct {
	Logger *slog.Logger
}

func (h *UpdateHostListingHandler) Handle(ctx context.Context, cmd UpdateHostListingCommand) (*dto.ListingDTO, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	if strings.TrimSpace(cmd.ListingID) == "" {
		return nil, errors.New("listing id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(domainlisting.HostID(cmd.HostID)) {
		return nil, ErrListingNotOwned
	}

	rate, err := cmd.Payload.nightlyRate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := l.UpdateAttributes(domainlisting.UpdateParams{
		Title:       cmd.Payload.Title,
		Description: cmd.Payload.Description,
		EntireUnit:  cmd.Payload.EntireUnit,
		Rooms:       cmd.Payload.Rooms,
		Washrooms:   cmd.Payload.Washrooms,
		Capacity:    cmd.Payload.Capacity,
		Location: domainlisting.Location{
			State:   cmd.Payload.State,
			Country: cmd.Payload.Country,
			Lat:     cmd.Payload.Lat,
			Lon:     cmd.Payload.Lon,
		},
		PricePerNight:     rate,
		IsAlwaysAvailable: len(cmd.Payload.ExcludedDates) == 0,
		Now:               now,
	}); err != nil {
		return nil, err
	}

	if err := unit.Listings().Save(ctx, l); err != nil {
		return nil, err
	}

	// Host blackouts are replaced wholesale; booking blocks stay untouched.
	calendar, err := unit.Availability().Calendar(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	kept := calendar.Blocks[:0]
	for _, block := range calendar.Blocks {
		if block.Reason != domainavailability.ReasonHostBlock {
			kept = append(kept, block)
		}
	}
	calendar.Blocks = kept
	if err := applyExcludedDates(calendar, cmd.Payload.ExcludedDates, now); err != nil {
		return nil, err
	}
	if err := unit.Availability().Save(ctx, calendar); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing updated", "listing_id", l.ID, "host_id", cmd.HostID)
	}

	result := dto.MapListing(l)
	return &result, nil
}

type DeleteHostListingCommand struct {
	HostID    string
	ListingID string
}

func (c DeleteHostListingCommand) Key() string { return deleteHostListingKey }

type DeleteHostListingResult struct {
	ListingID string `json:"listing_id"`
}

type DeleteHostListingHandler struct {
	Logger *slog.Logger
}

func (h *DeleteHostListingHandler) Handle(ctx context.Context, cmd DeleteHostListingCommand) (*DeleteHostListingResult, error) {
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, errors.New("host id is required")
	}
	if strings.TrimSpace(cmd.ListingID) == "" {
		return nil, errors.New("listing id is required")
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	l, err := unit.Listings().ByID(ctx, domainlisting.ListingID(cmd.ListingID))
	if err != nil {
		return nil, err
	}
	if !l.OwnedBy(domainlisting.HostID(cmd.HostID)) {
		return nil, ErrListingNotOwned
	}

	if err := unit.Availability().Delete(ctx, l.ID); err != nil {
		return nil, err
	}
	if err := unit.Listings().Delete(ctx, l.ID); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("host listing deleted", "listing_id", l.ID, "host_id", cmd.HostID)
	}

	return &DeleteHostListingResult{ListingID: string(l.ID)}, nil
}

func applyExcludedDates(calendar *domainavailability.BlackoutCalendar, dates []time.Time, now time.Time) error {
	for _, date := range dates {
		day := domainrange.Day(date)
		window := domainrange.DateRange{Start: day, End: day}
		if err := calendar.BlockRange(window, "", now); err != nil {
			// Duplicate excluded dates collapse into a single window.
			if errors.Is(err, domainavailability.ErrDatesUnavailable) {
				continue
			}
			return err
		}
	}
	return nil
}

var (
	_ commands.Handler[CreateHostListingCommand, *dto.ListingDTO]          = (*CreateHostListingHandler)(nil)
	_ commands.Handler[UpdateHostListingCommand, *dto.ListingDTO]          = (*UpdateHostListingHandler)(nil)
	_ commands.Handler[DeleteHostListingCommand, *DeleteHostListingResult] = (*DeleteHostListingHandler)(nil)
)
