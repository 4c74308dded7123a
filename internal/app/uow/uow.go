package uow

import (
	"context"

	domainauth "homestay/internal/domain/auth"
	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainhosting "homestay/internal/domain/hosting"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Listings() domainlisting.Repository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository
	Users() domainuser.Repository
	Sessions() domainauth.SessionStore
	Applications() domainhosting.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit of work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
