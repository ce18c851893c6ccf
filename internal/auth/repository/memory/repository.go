// Package memory holds the prototype credential store. It exists so the
// service runs without a database; the postgres repository is the production
// implementation of the same interface.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/crystalafinch/authentication/internal/auth/domain"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
)

type Repository struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func NewRepository() *Repository {
	return &Repository{
		byEmail: make(map[string]*domain.User),
		byID:    make(map[string]*domain.User),
	}
}

// Create inserts the user if the email is free. The check and the insert
// happen under one lock so concurrent calls for the same email cannot both
// succeed.
func (r *Repository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return apperrors.ErrEmailAlreadyInUse
	}

	stored := *user
	r.byEmail[stored.Email] = &stored
	r.byID[stored.ID] = &stored

	return nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}

	out := *user
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, nil
	}

	out := *user
	return &out, nil
}

func (r *Repository) BumpRefreshTokenVersion(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return 0, apperrors.ErrNoSuchUser
	}

	user.RefreshTokenVersion++
	user.UpdatedAt = time.Now()

	return user.RefreshTokenVersion, nil
}
