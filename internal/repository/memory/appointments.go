package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"seva-health/internal/models"
	"seva-health/internal/repository"
)

type AppointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Appointment
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{byID: make(map[string]models.Appointment)}
}

func (r *AppointmentRepo) Create(ctx context.Context, a *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; exists {
		return repository.ErrDuplicate
	}
	if a.IdempotencyKey != "" {
		for _, existing := range r.byID {
			if existing.PatientID == a.PatientID && existing.IdempotencyKey == a.IdempotencyKey {
				return repository.ErrDuplicate
			}
		}
	}
	a.CreatedAt = time.Now()
	r.byID[a.ID] = *a
	return nil
}

func (r *AppointmentRepo) FindByIdempotencyKey(ctx context.Context, patientID, key string) (*models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.byID {
		if a.PatientID == patientID && a.IdempotencyKey == key {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *AppointmentRepo) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Appointment, 0)
	for _, a := range r.byID {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Slot < out[j].Slot
	})
	return out, nil
}
