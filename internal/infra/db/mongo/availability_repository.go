package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainavailability "homestay/internal/domain/availability"
	domainlisting "homestay/internal/domain/listing"
	"homestay/internal/domain/shared/daterange"
)

const calendarsCollection = "blackout_calendars"

type AvailabilityRepository struct {
	col *mongo.Collection
}

func NewAvailabilityRepository(db *mongo.Database) *AvailabilityRepository {
	return &AvailabilityRepository{col: db.Collection(calendarsCollection)}
}

type calendarDocument struct {
	ListingID string          `bson:"_id"`
	Blocks    []blockDocument `bson:"blocks"`
	Version   int64           `bson:"version"`
}

type blockDocument struct {
	StartMillis int64  `bson:"start_ms"`
	EndMillis   int64  `bson:"end_ms"`
	Reason      string `bson:"reason"`
	Reference   string `bson:"reference"`
	CreatedAtMs int64  `bson:"created_at_ms"`
}

// Calendar loads the blackout calendar, returning an empty one for
// listings that never stored blocks. The empty calendar carries version
// zero so the first save inserts it.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainlisting.ListingID) (*domainavailability.BlackoutCalendar, error) {
	var doc calendarDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return domainavailability.NewCalendar(id), nil
		}
		return nil, fmt.Errorf("mongo: find calendar: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.BlackoutCalendar) error {
	doc := calendarToDocument(calendar)
	current := calendar.Version
	doc.Version = current + 1

	if current == 0 {
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrConcurrentUpdate
			}
			return fmt.Errorf("mongo: insert calendar: %w", err)
		}
	} else {
		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ListingID, "version": current}, doc)
		if err != nil {
			return fmt.Errorf("mongo: replace calendar: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrConcurrentUpdate
		}
	}
	calendar.Version = doc.Version
	return nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id domainlisting.ListingID) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return fmt.Errorf("mongo: delete calendar: %w", err)
	}
	return nil
}

func calendarToDocument(calendar *domainavailability.BlackoutCalendar) calendarDocument {
	blocks := make([]blockDocument, 0, len(calendar.Blocks))
	for _, block := range calendar.Blocks {
		blocks = append(blocks, blockDocument{
			StartMillis: block.Range.Start.UnixMilli(),
			EndMillis:   block.Range.End.UnixMilli(),
			Reason:      string(block.Reason),
			Reference:   block.Reference,
			CreatedAtMs: block.CreatedAt.UnixMilli(),
		})
	}
	return calendarDocument{
		ListingID: string(calendar.ListingID),
		Blocks:    blocks,
		Version:   calendar.Version,
	}
}

func (doc calendarDocument) toAggregate() *domainavailability.BlackoutCalendar {
	blocks := make([]domainavailability.Block, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		blocks = append(blocks, domainavailability.Block{
			Range: daterange.DateRange{
				Start: time.UnixMilli(block.StartMillis).UTC(),
				End:   time.UnixMilli(block.EndMillis).UTC(),
			},
			Reason:    domainavailability.BlockReason(block.Reason),
			Reference: block.Reference,
			CreatedAt: time.UnixMilli(block.CreatedAtMs).UTC(),
		})
	}
	return &domainavailability.BlackoutCalendar{
		ListingID: domainlisting.ListingID(doc.ListingID),
		Blocks:    blocks,
		Version:   doc.Version,
	}
}

var _ domainavailability.Repository = (*AvailabilityRepository)(nil)
