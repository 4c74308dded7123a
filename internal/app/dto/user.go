package dto

import (
	"time"

	"homestay/internal/domain/auth"
	"homestay/internal/domain/user"
)

type UserProfileDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles"`
	HasGoogle bool      `json:"has_google"`
	CreatedAt time.Time `json:"created_at"`
}

func MapUserProfile(u *user.User) UserProfileDTO {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	return UserProfileDTO{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Roles:     roles,
		HasGoogle: u.GoogleID != "",
		CreatedAt: u.CreatedAt,
	}
}

type AuthResponseDTO struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      UserProfileDTO `json:"user"`
}

func NewAuthResponse(session *auth.Session, u *user.User) AuthResponseDTO {
	return AuthResponseDTO{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt,
		User:      MapUserProfile(u),
	}
}
