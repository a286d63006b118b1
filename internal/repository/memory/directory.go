package memory

import (
	"context"
	"sort"
	"sync"

	"seva-health/internal/models"
)

type DirectoryRepo struct {
	mu      sync.RWMutex
	specs   map[string]models.Specialization
	doctors map[string]models.Doctor
}

func NewDirectoryRepo() *DirectoryRepo {
	return &DirectoryRepo{
		specs:   make(map[string]models.Specialization),
		doctors: make(map[string]models.Doctor),
	}
}

func (r *DirectoryRepo) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Specialization, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DirectoryRepo) FindSpecialization(ctx context.Context, id string) (*models.Specialization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.specs[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *DirectoryRepo) ListDoctors(ctx context.Context, specializationID string) ([]models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Doctor, 0)
	for _, d := range r.doctors {
		if d.SpecializationID == specializationID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *DirectoryRepo) FindDoctor(ctx context.Context, id string) (*models.Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *DirectoryRepo) Seed(ctx context.Context, specs []models.Specialization, doctors []models.Doctor) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.specs) > 0 {
		return false, nil
	}
	for _, s := range specs {
		r.specs[s.ID] = s
	}
	for _, d := range doctors {
		r.doctors[d.ID] = d
	}
	return true, nil
}
