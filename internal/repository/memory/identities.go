// Package memory holds in-process repositories used when no MongoDB URI is
// configured and in tests. They follow the Mongo repositories' conventions:
// lookups return (nil, nil) when nothing matches and Create reports
// repository.ErrDuplicate on unique key conflicts.
package memory

import (
	"context"
	"sync"
	"time"

	"seva-health/internal/models"
	"seva-health/internal/repository"
)

type IdentityRepo struct {
	mu      sync.RWMutex
	byID    map[string]models.Identity
	byEmail map[string]string
}

func NewIdentityRepo() *IdentityRepo {
	return &IdentityRepo{
		byID:    make(map[string]models.Identity),
		byEmail: make(map[string]string),
	}
}

func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	ident := r.byID[id]
	return &ident, nil
}

func (r *IdentityRepo) FindByID(ctx context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &ident, nil
}

func (r *IdentityRepo) Create(ctx context.Context, ident *models.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[ident.ID]; exists {
		return repository.ErrDuplicate
	}
	if _, exists := r.byEmail[ident.Email]; exists {
		return repository.ErrDuplicate
	}
	ident.CreatedAt = time.Now()
	ident.UpdatedAt = ident.CreatedAt
	r.byID[ident.ID] = *ident
	r.byEmail[ident.Email] = ident.ID
	return nil
}

func (r *IdentityRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.byID[id]
	if !ok {
		return nil
	}
	ident.PasswordHash = hash
	ident.UpdatedAt = time.Now()
	r.byID[id] = ident
	return nil
}

func (r *IdentityRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ident, ok := r.byID[id]; ok {
		delete(r.byEmail, ident.Email)
		delete(r.byID, id)
	}
	return nil
}
