package memory

import (
	"context"
	"sync"

	domainhosting "homestay/internal/domain/hosting"
	domainuser "homestay/internal/domain/user"
)

// ApplicationRepository keeps host applications in memory, unique per user.
type ApplicationRepository struct {
	mu     sync.RWMutex
	byID   map[domainhosting.ApplicationID]*domainhosting.Application
	byUser map[domainuser.ID]domainhosting.ApplicationID
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{
		byID:   make(map[domainhosting.ApplicationID]*domainhosting.Application),
		byUser: make(map[domainuser.ID]domainhosting.ApplicationID),
	}
}

func (r *ApplicationRepository) ByID(ctx context.Context, id domainhosting.ApplicationID) (*domainhosting.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if app, ok := r.byID[id]; ok {
		return cloneApplication(app), nil
	}
	return nil, domainhosting.ErrNotFound
}

func (r *ApplicationRepository) ByUser(ctx context.Context, userID domainuser.ID) (*domainhosting.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUser[userID]
	if !ok {
		return nil, domainhosting.ErrNotFound
	}
	if app, ok := r.byID[id]; ok {
		return cloneApplication(app), nil
	}
	return nil, domainhosting.ErrNotFound
}

func (r *ApplicationRepository) Save(ctx context.Context, app *domainhosting.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existingID, ok := r.byUser[app.UserID]; ok && existingID != app.ID {
		return domainhosting.ErrAlreadyApplied
	}
	r.byUser[app.UserID] = app.ID
	r.byID[app.ID] = cloneApplication(app)
	return nil
}

func cloneApplication(a *domainhosting.Application) *domainhosting.Application {
	if a == nil {
		return nil
	}
	copyApp := *a
	return &copyApp
}

var _ domainhosting.Repository = (*ApplicationRepository)(nil)
