package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"homestay/internal/app/uow"
	domainauth "homestay/internal/domain/auth"
	domainavailability "homestay/internal/domain/availability"
	domainbooking "homestay/internal/domain/booking"
	domainhosting "homestay/internal/domain/hosting"
	domainlisting "homestay/internal/domain/listing"
	domainuser "homestay/internal/domain/user"
)

// Factory builds units of work backed by Mongo sessions. Commands run
// inside a multi-document transaction so the booking and its calendar
// reservation commit or abort together.
type Factory struct {
	client       *Client
	listings     *ListingRepository
	availability *AvailabilityRepository
	bookings     *BookingRepository
	users        *UserRepository
	sessions     *SessionStore
	applications *ApplicationRepository
}

func NewFactory(client *Client) *Factory {
	db := client.Database()
	availability := NewAvailabilityRepository(db)
	return &Factory{
		client:       client,
		listings:     NewListingRepository(db, availability),
		availability: availability,
		bookings:     NewBookingRepository(db),
		users:        NewUserRepository(db),
		sessions:     NewSessionStore(db),
		applications: NewApplicationRepository(db),
	}
}

func (f *Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	session, err := f.client.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo: start session: %w", err)
	}
	if !opts.ReadOnly {
		if err := session.StartTransaction(); err != nil {
			session.EndSession(ctx)
			return nil, fmt.Errorf("mongo: start transaction: %w", err)
		}
	}
	return &Unit{factory: f, session: session, readOnly: opts.ReadOnly}, nil
}

type Unit struct {
	factory  *Factory
	session  mongo.Session
	readOnly bool
}

// InjectContext binds the session to the context so repository calls made
// through this unit participate in its transaction.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

func (u *Unit) Listings() domainlisting.Repository          { return u.factory.listings }
func (u *Unit) Availability() domainavailability.Repository { return u.factory.availability }
func (u *Unit) Bookings() domainbooking.Repository          { return u.factory.bookings }
func (u *Unit) Users() domainuser.Repository                { return u.factory.users }
func (u *Unit) Sessions() domainauth.SessionStore           { return u.factory.sessions }
func (u *Unit) Applications() domainhosting.Repository      { return u.factory.applications }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if u.readOnly {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

var (
	_ uow.Factory    = (*Factory)(nil)
	_ uow.UnitOfWork = (*Unit)(nil)
)
