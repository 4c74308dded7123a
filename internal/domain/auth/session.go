// Package auth holds the bearer-session state issued to signed-in users.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is the opaque credential handed to the client at login.
type Token string

// Session ties a token to a user for a bounded lifetime. Roles are copied
// onto the session so resolving a request needs no extra user lookup.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Roles  []user.Role
	TTL    time.Duration
	Now    time.Time
}

func (p CreateSessionParams) validate() error {
	if strings.TrimSpace(string(p.Token)) == "" {
		return ErrTokenRequired
	}
	if strings.TrimSpace(string(p.UserID)) == "" {
		return ErrUserRequired
	}
	if p.TTL <= 0 {
		return ErrTTLInvalid
	}
	return nil
}

// NewSession stamps the lifetime in UTC; a zero Now means the wall clock.
func NewSession(params CreateSessionParams) (*Session, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	issued := params.Now
	if issued.IsZero() {
		issued = time.Now()
	}
	issued = issued.UTC()

	roles := make([]user.Role, len(params.Roles))
	copy(roles, params.Roles)

	return &Session{
		Token:     Token(strings.TrimSpace(string(params.Token))),
		UserID:    params.UserID,
		Roles:     roles,
		CreatedAt: issued,
		ExpiresAt: issued.Add(params.TTL),
	}, nil
}

// Expired reports whether the lifetime has elapsed at the given instant.
// A zero instant means now.
func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

// SessionStore persists sessions keyed by token. Implementations are
// expected to drop expired records on their own schedule; Expired is
// still the authority at read time.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
