package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainuser "homestay/internal/domain/user"
)

var ErrGoogleUnavailable = errors.New("auth: google sign-in not configured")

// GoogleProfile is the subset of the userinfo payload the service needs.
type GoogleProfile struct {
	ID    string
	Email string
	Name  string
}

// GoogleVerifier exchanges an authorization code for a verified profile.
type GoogleVerifier interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (GoogleProfile, error)
}

func (s *Service) GoogleAuthURL(state string) (string, error) {
	if s.Google == nil {
		return "", ErrGoogleUnavailable
	}
	return s.Google.AuthURL(state), nil
}

// GoogleLogin signs a user in with an OAuth authorization code. An
// existing account with the same email gets the Google identity linked;
// otherwise a fresh guest account is created.
func (s *Service) GoogleLogin(ctx context.Context, code string) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if s.Google == nil {
		return nil, ErrGoogleUnavailable
	}
	profile, err := s.Google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	u, err := s.Users.ByEmail(ctx, domainuser.NormalizeEmail(profile.Email))
	switch {
	case err == nil:
		if err := u.LinkGoogle(profile.ID, now); err != nil {
			return nil, err
		}
		if err := s.Users.Save(ctx, u); err != nil {
			return nil, err
		}
	case errors.Is(err, domainuser.ErrNotFound):
		name := profile.Name
		if name == "" {
			name = profile.Email
		}
		u, err = domainuser.New(domainuser.CreateParams{
			ID:        domainuser.ID(uuid.NewString()),
			Email:     profile.Email,
			Name:      name,
			GoogleID:  profile.ID,
			Roles:     []domainuser.Role{domainuser.RoleGuest},
			CreatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		if err := s.Users.Save(ctx, u); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	session, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated via google", "user_id", u.ID)
	}
	return &AuthResult{User: u, Session: session}, nil
}
