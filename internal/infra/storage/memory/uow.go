package memory

import (
	"context"
	"errors"
	"sync"

	"homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainhosting "homestay/internal/domain/hosting"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
// Write units hold a store-wide lock from Begin until Commit or
// Rollback, so commands execute serially. That is what gives the
// check-then-reserve booking sequence the same guarantee a database
// transaction provides.
type Factory struct {
	ListingsRepo     domainlisting.Repository
	AvailabilityRepo domainavailability.Repository
	BookingRepo      domainbooking.Repository
	UsersRepo        domainuser.Repository
	SessionsStore    domainauth.SessionStore
	ApplicationsRepo domainhosting.Repository

	writeMu sync.Mutex
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.ListingsRepo == nil || f.AvailabilityRepo == nil || f.BookingRepo == nil ||
		f.UsersRepo == nil || f.SessionsStore == nil || f.ApplicationsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	unit := &Unit{factory: f}
	if !opts.ReadOnly {
		f.writeMu.Lock()
		unit.locked = true
	}
	return unit, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	factory *Factory
	locked  bool
	done    bool
}

func (u *Unit) Listings() domainlisting.Repository {
	return u.factory.ListingsRepo
}

func (u *Unit) Availability() domainavailability.Repository {
	return u.factory.AvailabilityRepo
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.factory.BookingRepo
}

func (u *Unit) Users() domainuser.Repository {
	return u.factory.UsersRepo
}

func (u *Unit) Sessions() domainauth.SessionStore {
	return u.factory.SessionsStore
}

func (u *Unit) Applications() domainhosting.Repository {
	return u.factory.ApplicationsRepo
}

func (u *Unit) Commit(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.release()
	return nil
}

func (u *Unit) release() {
	if u.done {
		return
	}
	u.done = true
	if u.locked {
		u.factory.writeMu.Unlock()
		u.locked = false
	}
}

var _ uow.Factory = (*Factory)(nil)
