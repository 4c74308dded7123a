package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/money"
)

const listingsCollection = "listings"

type ListingRepository struct {
	col          *mongo.Collection
	availability *AvailabilityRepository
}

func NewListingRepository(db *mongo.Database, availability *AvailabilityRepository) *ListingRepository {
	col := db.Collection(listingsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "host_id", Value: 1}}},
		{Keys: bson.D{{Key: "price_cents", Value: 1}}},
		{Keys: bson.D{{Key: "location.state", Value: 1}, {Key: "location.country", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &ListingRepository{col: col, availability: availability}
}

type listingDocument struct {
	ID                string           `bson:"_id"`
	HostID            string           `bson:"host_id"`
	Title             string           `bson:"title"`
	Description       string           `bson:"description"`
	EntireUnit        bool             `bson:"entire_unit"`
	Rooms             int              `bson:"rooms"`
	Washrooms         int              `bson:"washrooms"`
	Capacity          int              `bson:"capacity"`
	Location          locationDocument `bson:"location"`
	PriceCents        int64            `bson:"price_cents"`
	Currency          string           `bson:"currency"`
	IsAlwaysAvailable bool             `bson:"is_always_available"`
	Photos            []string         `bson:"photos"`
	CreatedAtMillis   int64            `bson:"created_at_ms"`
	UpdatedAtMillis   int64            `bson:"updated_at_ms"`
	Version           int64            `bson:"version"`
}

type locationDocument struct {
	State   string  `bson:"state"`
	Country string  `bson:"country"`
	Lat     float64 `bson:"lat"`
	Lon     float64 `bson:"lon"`
}

func (r *ListingRepository) ByID(ctx context.Context, id domainlisting.ListingID) (*domainlisting.Listing, error) {
	var doc listingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainlisting.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find listing: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *ListingRepository) ByHost(ctx context.Context, host domainlisting.HostID) ([]*domainlisting.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at_ms", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"host_id": string(host)}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list host listings: %w", err)
	}
	return decodeListings(ctx, cursor)
}

func (r *ListingRepository) Save(ctx context.Context, l *domainlisting.Listing) error {
	doc := listingToDocument(l)
	current := l.Version
	doc.Version = current + 1

	if current == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrConcurrentUpdate
			}
			return fmt.Errorf("mongo: insert listing: %w", err)
		}
	} else {
		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": current}, doc)
		if err != nil {
			return fmt.Errorf("mongo: replace listing: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrConcurrentUpdate
		}
	}
	l.Version = doc.Version
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("mongo: delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domainlisting.ErrNotFound
	}
	return nil
}

// Search filters on indexed attributes in Mongo and applies the stay
// filter afterwards, consulting each candidate's blackout calendar with
// the same rule the booking path uses.
func (r *ListingRepository) Search(ctx context.Context, params domainlisting.SearchParams) (domainlisting.SearchResult, error) {
	opts := params.Normalized()
	filter := searchFilter(opts)

	findOpts := options.Find().SetSort(bson.D{
		{Key: "price_cents", Value: 1},
		{Key: "created_at_ms", Value: -1},
	})
	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainlisting.SearchResult{}, fmt.Errorf("mongo: search listings: %w", err)
	}
	candidates, err := decodeListings(ctx, cursor)
	if err != nil {
		return domainlisting.SearchResult{}, err
	}

	matches := candidates
	if opts.Stay != nil {
		matches = matches[:0]
		for _, l := range candidates {
			ok, err := r.bookableFor(ctx, l, opts)
			if err != nil {
				return domainlisting.SearchResult{}, err
			}
			if ok {
				matches = append(matches, l)
			}
		}
	}

	total := len(matches)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return domainlisting.SearchResult{Items: matches[start:end], Total: total}, nil
}

func (r *ListingRepository) bookableFor(ctx context.Context, l *domainlisting.Listing, opts domainlisting.SearchParams) (bool, error) {
	if l.IsAlwaysAvailable {
		return true, nil
	}
	calendar, err := r.availability.Calendar(ctx, l.ID)
	if err != nil {
		return false, err
	}
	return calendar.CanBook(l.IsAlwaysAvailable, *opts.Stay), nil
}

func searchFilter(opts domainlisting.SearchParams) bson.M {
	filter := bson.M{}
	if opts.Host != "" {
		filter["host_id"] = string(opts.Host)
	}
	if opts.Place != "" {
		pattern := primitive.Regex{Pattern: regexEscape(opts.Place), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"location.state": pattern},
			bson.M{"location.country": pattern},
		}
	}
	if opts.MinGuests > 0 {
		filter["capacity"] = bson.M{"$gte": opts.MinGuests}
	}
	if opts.MinRooms > 0 {
		filter["rooms"] = bson.M{"$gte": opts.MinRooms}
	}
	price := bson.M{}
	if opts.PriceMinCents > 0 {
		price["$gte"] = opts.PriceMinCents
	}
	if opts.PriceMaxCents > 0 {
		price["$lte"] = opts.PriceMaxCents
	}
	if len(price) > 0 {
		filter["price_cents"] = price
	}
	return filter
}

func regexEscape(s string) string {
	escaped := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, r)
	}
	return string(escaped)
}

func decodeListings(ctx context.Context, cursor *mongo.Cursor) ([]*domainlisting.Listing, error) {
	defer cursor.Close(ctx)
	listings := make([]*domainlisting.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode listing: %w", err)
		}
		listings = append(listings, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate listings: %w", err)
	}
	return listings, nil
}

func listingToDocument(l *domainlisting.Listing) listingDocument {
	return listingDocument{
		ID:          string(l.ID),
		HostID:      string(l.Host),
		Title:       l.Title,
		Description: l.Description,
		EntireUnit:  l.EntireUnit,
		Rooms:       l.Rooms,
		Washrooms:   l.Washrooms,
		Capacity:    l.Capacity,
		Location: locationDocument{
			State:   l.Location.State,
			Country: l.Location.Country,
			Lat:     l.Location.Lat,
			Lon:     l.Location.Lon,
		},
		PriceCents:        l.PricePerNight.Amount,
		Currency:          l.PricePerNight.Currency,
		IsAlwaysAvailable: l.IsAlwaysAvailable,
		Photos:            l.Photos,
		CreatedAtMillis:   l.CreatedAt.UnixMilli(),
		UpdatedAtMillis:   l.UpdatedAt.UnixMilli(),
		Version:           l.Version,
	}
}

func (doc listingDocument) toAggregate() *domainlisting.Listing {
	return &domainlisting.Listing{
		ID:          domainlisting.ListingID(doc.ID),
		Host:        domainlisting.HostID(doc.HostID),
		Title:       doc.Title,
		Description: doc.Description,
		EntireUnit:  doc.EntireUnit,
		Rooms:       doc.Rooms,
		Washrooms:   doc.Washrooms,
		Capacity:    doc.Capacity,
		Location: domainlisting.Location{
			State:   doc.Location.State,
			Country: doc.Location.Country,
			Lat:     doc.Location.Lat,
			Lon:     doc.Location.Lon,
		},
		PricePerNight:     money.Money{Amount: doc.PriceCents, Currency: doc.Currency},
		IsAlwaysAvailable: doc.IsAlwaysAvailable,
		Photos:            doc.Photos,
		CreatedAt:         time.UnixMilli(doc.CreatedAtMillis).UTC(),
		UpdatedAt:         time.UnixMilli(doc.UpdatedAtMillis).UTC(),
		Version:           doc.Version,
	}
}

var _ domainlisting.Repository = (*ListingRepository)(nil)
