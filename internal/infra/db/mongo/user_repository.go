package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainuser "homestay/internal/domain/user"
)

const usersCollection = "users"

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	col := db.Collection(usersCollection)
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &UserRepository{col: col}
}

type userDocument struct {
	ID              string   `bson:"_id"`
	Email           string   `bson:"email"`
	Name            string   `bson:"name"`
	PasswordHash    string   `bson:"password_hash"`
	GoogleID        string   `bson:"google_id"`
	Roles           []string `bson:"roles"`
	CreatedAtMillis int64    `bson:"created_at_ms"`
	UpdatedAtMillis int64    `bson:"updated_at_ms"`
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	var doc userDocument
	err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find user: %w", err)
	}
	return doc.toAggregate(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	var doc userDocument
	err := r.col.FindOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainuser.ErrNotFound
		}
		return nil, fmt.Errorf("mongo: find user by email: %w", err)
	}
	return doc.toAggregate(), nil
}

// Save upserts by id; the unique email index backs up the service-level
// duplicate check under concurrency.
func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	doc := userToDocument(u)
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainuser.ErrEmailAlreadyUsed
		}
		return fmt.Errorf("mongo: save user: %w", err)
	}
	return nil
}

func userToDocument(u *domainuser.User) userDocument {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return userDocument{
		ID:              string(u.ID),
		Email:           u.Email,
		Name:            u.Name,
		PasswordHash:    u.PasswordHash,
		GoogleID:        u.GoogleID,
		Roles:           roles,
		CreatedAtMillis: u.CreatedAt.UnixMilli(),
		UpdatedAtMillis: u.UpdatedAt.UnixMilli(),
	}
}

func (doc userDocument) toAggregate() *domainuser.User {
	roles := make([]domainuser.Role, 0, len(doc.Roles))
	for _, role := range doc.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainuser.User{
		ID:           domainuser.ID(doc.ID),
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		GoogleID:     doc.GoogleID,
		Roles:        roles,
		CreatedAt:    time.UnixMilli(doc.CreatedAtMillis).UTC(),
		UpdatedAt:    time.UnixMilli(doc.UpdatedAtMillis).UTC(),
	}
}

var _ domainuser.Repository = (*UserRepository)(nil)
