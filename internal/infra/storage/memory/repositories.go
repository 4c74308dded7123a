package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
)

// ListingRepository is an in-memory implementation for local development
// and tests. Stay filtering consults the availability repository so the
// search path applies the same blackout rule as booking.
type ListingRepository struct {
	mu           sync.RWMutex
	items        map[domainlisting.ListingID]*domainlisting.Listing
	availability *AvailabilityRepository
}

func NewListingRepository(availability *AvailabilityRepository) *ListingRepository {
	return &ListingRepository{
		items:        make(map[domainlisting.ListingID]*domainlisting.Listing),
		availability: availability,
	}
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.items[id]
	if !ok {
		return nil, domainlisting.ErrNotFound
	}
	return l, nil
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainlisting.HostID) ([]*domainlisting.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainlisting.Listing, 0)
	for _, l := range r.items {
		if l.Host == host {
			matches = append(matches, l)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.Version++
	r.items[l.ID] = l
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainlisting.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// Search returns listings that satisfy the provided filters.
func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainlisting.Listing, 0, len(r.items))
	for _, l := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return domainlisting.SearchResult{}, ctx.Err()
			default:
			}
		}

		if opts.Host != "" && l.Host != opts.Host {
			continue
		}
		if !l.MatchesPlace(opts.Place) {
			continue
		}
		if opts.MinGuests > 0 && l.Capacity < opts.MinGuests {
			continue
		}
		if opts.MinRooms > 0 && l.Rooms < opts.MinRooms {
			continue
		}
		if opts.PriceMinCents > 0 && l.PricePerNight.Amount < opts.PriceMinCents {
			continue
		}
		if opts.PriceMaxCents > 0 && l.PricePerNight.Amount > opts.PriceMaxCents {
			continue
		}
		if opts.Stay != nil && !r.bookableFor(ctx, l, opts) {
			continue
		}
		matches = append(matches, l)
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].PricePerNight.Amount == matches[j].PricePerNight.Amount {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].PricePerNight.Amount < matches[j].PricePerNight.Amount
	})

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}

	return domainlisting.SearchResult{
		Items: matches[start:end],
		Total: total,
	}, nil
}

func (r *ListingRepository) bookableFor(ctx context.Context, l *domainlisting.Listing, opts domainlisting.SearchParams) bool {
	if l.IsAlwaysAvailable {
		return true
	}
	if r.availability == nil {
		return true
	}
	calendar, err := r.availability.Calendar(ctx, l.ID)
	if err != nil {
		return false
	}
	return calendar.CanBook(l.IsAlwaysAvailable, *opts.Stay)
}

// AvailabilityRepository keeps blackout calendars in memory.
type AvailabilityRepository struct {
	mu        sync.RWMutex
	calendars map[domainlisting.ListingID]*domainavailability.BlackoutCalendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainlisting.ListingID]*domainavailability.BlackoutCalendar),
	}
}

// Calendar retrieves a calendar, lazily creating an empty one.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlisting.ListingID) (*domainavailability.BlackoutCalendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cal, ok := r.calendars[id]; ok {
		return cal, nil
	}
	cal := domainavailability.NewCalendar(id)
	r.calendars[id] = cal
	return cal, nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.BlackoutCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	calendar.Version++
	r.calendars[calendar.ListingID] = calendar
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calendars, id)
	return nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.items[b.ID] = b
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id := strings.TrimSpace(guestID)
	if id == "" {
		return nil, errors.New("memory: guest id required")
	}
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if b.GuestID == id {
			matches = append(matches, b)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

var (
	_ domainlisting.Repository      = (*ListingRepository)(nil)
	_ domainavailability.Repository = (*AvailabilityRepository)(nil)
	_ domainbooking.Repository      = (*BookingRepository)(nil)
)
