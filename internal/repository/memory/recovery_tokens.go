package memory

import (
	"context"
	"sync"
	"time"

	"seva-health/internal/models"
	"seva-health/internal/repository"
)

type RecoveryTokenRepo struct {
	mu      sync.RWMutex
	byToken map[string]models.RecoveryToken
}

func NewRecoveryTokenRepo() *RecoveryTokenRepo {
	return &RecoveryTokenRepo{byToken: make(map[string]models.RecoveryToken)}
}

func (r *RecoveryTokenRepo) Create(ctx context.Context, token *models.RecoveryToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byToken[token.Token]; exists {
		return repository.ErrDuplicate
	}
	token.CreatedAt = time.Now()
	r.byToken[token.Token] = *token
	return nil
}

func (r *RecoveryTokenRepo) FindByToken(ctx context.Context, token string) (*models.RecoveryToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.byToken[token]
	if !ok {
		return nil, nil
	}
	return &rt, nil
}

func (r *RecoveryTokenRepo) MarkUsed(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rt, ok := r.byToken[token]; ok {
		rt.IsUsed = true
		r.byToken[token] = rt
	}
	return nil
}

func (r *RecoveryTokenRepo) CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	since := time.Now().Add(-duration)
	var n int64
	for _, rt := range r.byToken {
		if rt.Email == email && !rt.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
