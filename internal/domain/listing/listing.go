package listing

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/shared/events"
	"homestay/internal/domain/shared/money"
)

var (
	ErrTitleRequired = errors.New("listing: title is required")
	ErrCapacity      = errors.New("listing: capacity must be at least 1")
	ErrRooms         = errors.New("listing: room count must be non-negative")
	ErrWashrooms     = errors.New("listing: washroom count must be non-negative")
	ErrNightlyRate   = errors.New("listing: nightly rate must be non-negative")
	ErrNotFound      = errors.New("listing: not found")
	ErrNotOwned      = errors.New("listing: not owned by this host")
)

type ListingID string
type HostID string

type Location struct {
	State   string
	Country string
	Lat     float64
	Lon     float64
}

// Listing is a bookable unit published by a host. PricePerNight is kept in
// integer cents; IsAlwaysAvailable short-circuits every blackout check.
type Listing struct {
	ID                ListingID
	Host              HostID
	Title             string
	Description       string
	EntireUnit        bool
	Rooms             int
	Washrooms         int
	Capacity          int
	Location          Location
	PricePerNight     money.Money
	IsAlwaysAvailable bool
	Photos            []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Version           int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ListingID) (*Listing, error)
	ByHost(ctx context.Context, host HostID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id ListingID) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID                ListingID
	Host              HostID
	Title             string
	Description       string
	EntireUnit        bool
	Rooms             int
	Washrooms         int
	Capacity          int
	Location          Location
	PricePerNight     money.Money
	IsAlwaysAvailable bool
	Photos            []string
	Now               time.Time
}

func New(params CreateParams) (*Listing, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("listing: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, errors.New("listing: host is required")
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, ErrTitleRequired
	}
	if params.Capacity < 1 {
		return nil, ErrCapacity
	}
	if params.Rooms < 0 {
		return nil, ErrRooms
	}
	if params.Washrooms < 0 {
		return nil, ErrWashrooms
	}
	if params.PricePerNight.Amount < 0 {
		return nil, ErrNightlyRate
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	l := &Listing{
		ID:                params.ID,
		Host:              params.Host,
		Title:             strings.TrimSpace(params.Title),
		Description:       strings.TrimSpace(params.Description),
		EntireUnit:        params.EntireUnit,
		Rooms:             params.Rooms,
		Washrooms:         params.Washrooms,
		Capacity:          params.Capacity,
		Location:          params.Location,
		PricePerNight:     params.PricePerNight,
		IsAlwaysAvailable: params.IsAlwaysAvailable,
		Photos:            append([]string(nil), params.Photos...),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	l.Record(CreatedEvent{ListingID: l.ID, HostID: l.Host, At: now})
	return l, nil
}

type UpdateParams struct {
	Title             string
	Description       string
	EntireUnit        bool
	Rooms             int
	Washrooms         int
	Capacity          int
	Location          Location
	PricePerNight     money.Money
	IsAlwaysAvailable bool
	Now               time.Time
}

func (l *Listing) UpdateAttributes(params UpdateParams) error {
	if strings.TrimSpace(params.Title) == "" {
		return ErrTitleRequired
	}
	if params.Capacity < 1 {
		return ErrCapacity
	}
	if params.Rooms < 0 {
		return ErrRooms
	}
	if params.Washrooms < 0 {
		return ErrWashrooms
	}
	if params.PricePerNight.Amount < 0 {
		return ErrNightlyRate
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()

	l.Title = strings.TrimSpace(params.Title)
	l.Description = strings.TrimSpace(params.Description)
	l.EntireUnit = params.EntireUnit
	l.Rooms = params.Rooms
	l.Washrooms = params.Washrooms
	l.Capacity = params.Capacity
	l.Location = params.Location
	l.PricePerNight = params.PricePerNight
	l.IsAlwaysAvailable = params.IsAlwaysAvailable
	l.UpdatedAt = now
	l.Record(UpdatedEvent{ListingID: l.ID, At: now})
	return nil
}

func (l *Listing) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("listing: photo url is required")
	}
	l.Photos = append(l.Photos, url)
	l.UpdatedAt = now.UTC()
	l.Record(UpdatedEvent{ListingID: l.ID, At: l.UpdatedAt})
	return nil
}

// OwnedBy guards host-only mutations.
func (l *Listing) OwnedBy(host HostID) bool {
	return l.Host == host
}
