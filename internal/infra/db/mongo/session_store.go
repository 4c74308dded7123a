package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainauth "homestay/internal/domain/auth"
	domainuser "homestay/internal/domain/user"
)

const sessionsCollection = "sessions"

// SessionStore persists bearer sessions. A TTL index expires documents
// shortly after their expires_at so stale sessions clean themselves up.
type SessionStore struct {
	col *mongo.Collection
}

func NewSessionStore(db *mongo.Database) *SessionStore {
	col := db.Collection(sessionsCollection)
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(60),
		},
	}
	_, _ = col.Indexes().CreateMany(context.Background(), indexes)
	return &SessionStore{col: col}
}

type sessionDocument struct {
	Token     string    `bson:"_id"`
	UserID    string    `bson:"user_id"`
	Roles     []string  `bson:"roles"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	roles := make([]string, 0, len(session.Roles))
	for _, role := range session.Roles {
		roles = append(roles, string(role))
	}
	doc := sessionDocument{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Roles:     roles,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"_id": doc.Token}, doc, opts); err != nil {
		return fmt.Errorf("mongo: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	var doc sessionDocument
	err := s.col.FindOne(ctx, bson.M{"_id": string(token)}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("mongo: find session: %w", err)
	}
	roles := make([]domainuser.Role, 0, len(doc.Roles))
	for _, role := range doc.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainauth.Session{
		Token:     domainauth.Token(doc.Token),
		UserID:    domainuser.ID(doc.UserID),
		Roles:     roles,
		CreatedAt: doc.CreatedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"_id": string(token)}); err != nil {
		return fmt.Errorf("mongo: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	if _, err := s.col.DeleteMany(ctx, bson.M{"user_id": string(userID)}); err != nil {
		return fmt.Errorf("mongo: delete user sessions: %w", err)
	}
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
