package listing

import (
	"strings"

	"homestay/internal/domain/shared/daterange"
)

const (
	defaultSearchLimit = 24
	maxSearchLimit     = 60
)

// SearchParams describe catalog filters and paging options. Place matches
// either the state or the country, case-insensitively. Stay, when set,
// restricts results to listings bookable for the whole interval.
type SearchParams struct {
	Host          HostID
	Place         string
	PriceMinCents int64
	PriceMaxCents int64
	MinRooms      int
	MinGuests     int
	Stay          *daterange.DateRange
	Limit         int
	Offset        int
}

// Normalized returns a sanitized copy of params.
func (p SearchParams) Normalized() SearchParams {
	normalized := p
	normalized.Place = strings.TrimSpace(strings.ToLower(normalized.Place))
	if normalized.MinRooms < 0 {
		normalized.MinRooms = 0
	}
	if normalized.MinGuests < 0 {
		normalized.MinGuests = 0
	}
	if normalized.PriceMinCents < 0 {
		normalized.PriceMinCents = 0
	}
	if normalized.PriceMaxCents > 0 && normalized.PriceMaxCents < normalized.PriceMinCents {
		normalized.PriceMaxCents = 0
	}
	if normalized.Stay != nil {
		stay := *normalized.Stay
		stay.Start = daterange.Day(stay.Start)
		stay.End = daterange.Day(stay.End)
		if stay.Validate() != nil {
			normalized.Stay = nil
		} else {
			normalized.Stay = &stay
		}
	}
	if normalized.Limit <= 0 {
		normalized.Limit = defaultSearchLimit
	}
	if normalized.Limit > maxSearchLimit {
		normalized.Limit = maxSearchLimit
	}
	if normalized.Offset < 0 {
		normalized.Offset = 0
	}
	return normalized
}

// MatchesPlace reports whether the listing location satisfies the
// normalized place filter.
func (l *Listing) MatchesPlace(place string) bool {
	if place == "" {
		return true
	}
	return strings.Contains(strings.ToLower(l.Location.State), place) ||
		strings.Contains(strings.ToLower(l.Location.Country), place)
}

// SearchResult wraps search hits with meta.
type SearchResult struct {
	Items []*Listing
	Total int
}
