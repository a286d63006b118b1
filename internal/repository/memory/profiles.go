package memory

import (
	"context"
	"sync"
	"time"

	"seva-health/internal/models"
	"seva-health/internal/repository"
)

type ProfileRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Profile
}

func NewProfileRepo() *ProfileRepo {
	return &ProfileRepo{byID: make(map[string]models.Profile)}
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[p.ID]; exists {
		return repository.ErrDuplicate
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	r.byID[p.ID] = *p
	return nil
}

func (r *ProfileRepo) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}
