package memory

import (
	"context"
	"sync"
	"time"

	"seva-health/internal/models"
	"seva-health/internal/repository"
)

type SessionRepo struct {
	mu   sync.RWMutex
	byID map[string]models.Session
}

func NewSessionRepo() *SessionRepo {
	return &SessionRepo{byID: make(map[string]models.Session)}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[s.ID]; exists {
		return repository.ErrDuplicate
	}
	s.CreatedAt = time.Now()
	r.byID[s.ID] = *s
	return nil
}

func (r *SessionRepo) FindByID(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *SessionRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.byID {
		if s.UserID == userID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}
