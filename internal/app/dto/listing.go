package dto

import (
	"time"

	"homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

type MoneyDTO struct {
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

func MapMoney(m money.Money) MoneyDTO {
	return MoneyDTO{AmountCents: m.Amount, Currency: m.Currency}
}

type LocationDTO struct {
	State   string  `json:"state"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type ListingDTO struct {
	ID                string      `json:"id"`
	HostID            string      `json:"host_id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	EntireUnit        bool        `json:"entire_unit"`
	Rooms             int         `json:"rooms"`
	Washrooms         int         `json:"washrooms"`
	Capacity          int         `json:"capacity"`
	Location          LocationDTO `json:"location"`
	PricePerNight     MoneyDTO    `json:"price_per_night"`
	IsAlwaysAvailable bool        `json:"is_always_available"`
	Photos            []string    `json:"photos"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func MapListing(l *listing.Listing) ListingDTO {
	photos := l.Photos
	if photos == nil {
		photos = []string{}
	}
	return ListingDTO{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		EntireUnit:  l.EntireUnit,
		Rooms:       l.Rooms,
		Washrooms:   l.Washrooms,
		Capacity:    l.Capacity,
		Location: LocationDTO{
			State:   l.Location.State,
			Country: l.Location.Country,
			Lat:     l.Location.Lat,
			Lon:     l.Location.Lon,
		},
		PricePerNight:     MapMoney(l.PricePerNight),
		IsAlwaysAvailable: l.IsAlwaysAvailable,
		Photos:            photos,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

type ListingPageDTO struct {
	Items []ListingDTO `json:"items"`
	Total int          `json:"total"`
}

func MapListingPage(result listing.SearchResult) ListingPageDTO {
	items := make([]ListingDTO, 0, len(result.Items))
	for _, l := range result.Items {
		items = append(items, MapListing(l))
	}
	return ListingPageDTO{Items: items, Total: result.Total}
}
