package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainhosting "homestay/internal/domain/hosting"
	domainuser "homestay/internal/domain/user"
)

const applicationsCollection = "host_applications"

type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	col := db.Collection(applicationsCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ApplicationRepository{col: col}
}

type applicationDocument struct {
	ID              string `bson:"_id"`
	UserID          string `bson:"user_id"`
	FullName        string `bson:"full_name"`
	ContactInfo     string `bson:"contact_info"`
	BankName        string `bson:"bank_name"`
	BankAccount     string `bson:"bank_account"`
	Status          string `bson:"status"`
	CreatedAtMillis int64  `bson:"created_at_ms"`
	UpdatedAtMillis int64  `bson:"updated_at_ms"`
}

func (r *ApplicationRepository) ByID(ctx context.Context, id domainhosting.ApplicationID) (*domainhosting.Application, error) {
	var doc applicationDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainhosting.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find application: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *ApplicationRepository) ByUser(ctx context.Context, userID domainuser.ID) (*domainhosting.Application, error) {
	var doc applicationDocument
	err := r.col.FindOne(ctx, bson.M{"user_id": string(userID)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainhosting.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find application by user: %w", err)
	}
	return doc.toAggregate(), nil
}

// Save upserts by id. The unique user_id index turns a concurrent second
// application into ErrAlreadyApplied.
func (r *ApplicationRepository) Save(ctx context.Context, application *domainhosting.Application) error {
	doc := applicationToDocument(application)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainhosting.ErrAlreadyApplied
		}
		return fmt.Errorf("mongo: save application: %w", err)
	}
	return nil
}

func applicationToDocument(a *domainhosting.Application) applicationDocument {
	return applicationDocument{
		ID:              string(a.ID),
		UserID:          string(a.UserID),
		FullName:        a.FullName,
		ContactInfo:     a.ContactInfo,
		BankName:        a.BankName,
		BankAccount:     a.BankAccount,
		Status:          string(a.Status),
		CreatedAtMillis: a.CreatedAt.UnixMilli(),
		UpdatedAtMillis: a.UpdatedAt.UnixMilli(),
	}
}

func (doc applicationDocument) toAggregate() *domainhosting.Application {
	return &domainhosting.Application{
		ID:          domainhosting.ApplicationID(doc.ID),
		UserID:      domainuser.ID(doc.UserID),
		FullName:    doc.FullName,
		ContactInfo: doc.ContactInfo,
		BankName:    doc.BankName,
		BankAccount: doc.BankAccount,
		Status:      domainhosting.Status(doc.Status),
		CreatedAt:   time.UnixMilli(doc.CreatedAtMillis).UTC(),
		UpdatedAt:   time.UnixMilli(doc.UpdatedAtMillis).UTC(),
	}
}

var _ domainhosting.Repository = (*ApplicationRepository)(nil)
