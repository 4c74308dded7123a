package hosting

import (
	"context"
	"errors"
	"strings"
	"time"

	"homestay/internal/domain/user"
)

var (
	ErrAlreadyApplied  = errors.New("hosting: application already submitted")
	ErrAlreadyHost     = errors.New("hosting: user is already a host")
	ErrNotFound        = errors.New("hosting: application not found")
	ErrNotPending      = errors.New("hosting: application is not pending")
	ErrDetailsRequired = errors.New("hosting: contact and bank details are required")
)

type ApplicationID string

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Application is the one-per-user request to become a host. Approval
// grants the host role on the applying user.
type Application struct {
	ID          ApplicationID
	UserID      user.ID
	FullName    string
	ContactInfo string
	BankName    string
	BankAccount string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ApplicationID) (*Application, error)
	ByUser(ctx context.Context, userID user.ID) (*Application, error)
	Save(ctx context.Context, application *Application) error
}

type ApplyParams struct {
	ID          ApplicationID
	UserID      user.ID
	FullName    string
	ContactInfo string
	BankName    string
	BankAccount string
	Now         time.Time
}

func NewApplication(params ApplyParams) (*Application, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("hosting: id is required")
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, errors.New("hosting: user id is required")
	}
	fullName := strings.TrimSpace(params.FullName)
	contact := strings.TrimSpace(params.ContactInfo)
	bankName := strings.TrimSpace(params.BankName)
	bankAccount := strings.TrimSpace(params.BankAccount)
	if fullName == "" || contact == "" || bankName == "" || bankAccount == "" {
		return nil, ErrDetailsRequired
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Application{
		ID:          params.ID,
		UserID:      params.UserID,
		FullName:    fullName,
		ContactInfo: contact,
		BankName:    bankName,
		BankAccount: bankAccount,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Approve transitions a pending application and grants the host role.
func (a *Application) Approve(applicant *user.User, now time.Time) error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	if err := applicant.EnsureRole(user.RoleHost, now); err != nil {
		return err
	}
	a.Status = StatusApproved
	a.UpdatedAt = now.UTC()
	return nil
}

// Reject transitions a pending application without touching the user.
func (a *Application) Reject(now time.Time) error {
	if a.Status != StatusPending {
		return ErrNotPending
	}
	a.Status = StatusRejected
	a.UpdatedAt = now.UTC()
	return nil
}
