package dto

import (
	"time"

	"homestay/internal/domain/hosting"
)

type HostApplicationDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name"`
	ContactInfo string    `json:"contact_info"`
	BankName    string    `json:"bank_name"`
	BankAccount string    `json:"bank_account"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func MapHostApplication(a *hosting.Application) HostApplicationDTO {
	return HostApplicationDTO{
		ID:          string(a.ID),
		UserID:      string(a.UserID),
		FullName:    a.FullName,
		ContactInfo: a.ContactInfo,
		BankName:    a.BankName,
		BankAccount: a.BankAccount,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
