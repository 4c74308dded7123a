package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "homestay/internal/domain/booking"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
	"homestay/internal/domain/shared/money"
)

const bookingsCollection = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection(bookingsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "guest_id", Value: 1}, {Key: "created_at_ms", Value: -1}}},
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &BookingRepository{col: col}
}

type bookingDocument struct {
	ID              string `bson:"_id"`
	ListingID       string `bson:"listing_id"`
	GuestID         string `bson:"guest_id"`
	StartMillis     int64  `bson:"start_ms"`
	EndMillis       int64  `bson:"end_ms"`
	Guests          int    `bson:"guests"`
	TotalCents      int64  `bson:"total_cents"`
	Currency        string `bson:"currency"`
	CreatedAtMillis int64  `bson:"created_at_ms"`
	Version         int64  `bson:"version"`
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find booking: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := bookingToDocument(b)
	current := b.Version
	doc.Version = current + 1

	if current == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrConcurrentUpdate
			}
			return fmt.Errorf("mongo: insert booking: %w", err)
		}
	} else {
		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": current}, doc)
		if err != nil {
			return fmt.Errorf("mongo: replace booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrConcurrentUpdate
		}
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at_ms", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"guest_id": guestID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list guest bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*domainbooking.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("mongo: decode booking: %w", err)
		}
		bookings = append(bookings, doc.toAggregate())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("mongo: iterate bookings: %w", err)
	}
	return bookings, nil
}

func bookingToDocument(b *domainbooking.Booking) bookingDocument {
	return bookingDocument{
		ID:              string(b.ID),
		ListingID:       string(b.ListingID),
		GuestID:         b.GuestID,
		StartMillis:     b.Stay.Start.UnixMilli(),
		EndMillis:       b.Stay.End.UnixMilli(),
		Guests:          b.Guests,
		TotalCents:      b.Total.Amount,
		Currency:        b.Total.Currency,
		CreatedAtMillis: b.CreatedAt.UnixMilli(),
		Version:         b.Version,
	}
}

func (doc bookingDocument) toAggregate() *domainbooking.Booking {
	return &domainbooking.Booking{
		ID:        domainbooking.BookingID(doc.ID),
		ListingID: domainlisting.ListingID(doc.ListingID),
		GuestID:   doc.GuestID,
		Stay: daterange.DateRange{
			Start: time.UnixMilli(doc.StartMillis).UTC(),
			End:   time.UnixMilli(doc.EndMillis).UTC(),
		},
		Guests:    doc.Guests,
		Total:     money.Money{Amount: doc.TotalCents, Currency: doc.Currency},
		CreatedAt: time.UnixMilli(doc.CreatedAtMillis).UTC(),
		Version:   doc.Version,
	}
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
