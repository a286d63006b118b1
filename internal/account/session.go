package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seva-health/internal/metrics"
	"seva-health/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claims are carried by session tokens. RegisteredClaims.ID is the session id.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is what a successful login hands back to the caller.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession verifies the credentials and opens a session.
func (s *Service) CreateSession(ctx context.Context, email, password string) (Session, error) {
	ident, err := s.authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	rec := &models.Session{
		ID:        uuid.NewString(),
		UserID:    ident.ID,
		ExpiresAt: now.Add(s.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: ident.ID,
		Email:  ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        rec.ID,
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}

	if err := s.sessions.Create(ctx, rec); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}

	metrics.SessionsCreated.Inc()
	s.log.Info("session created", zap.String("user_id", ident.ID), zap.String("session_id", rec.ID))
	return Session{ID: rec.ID, UserID: ident.ID, Token: signed, ExpiresAt: rec.ExpiresAt}, nil
}

// VerifySession checks the token signature and expiry and that its session
// has not been deleted.
func (s *Service) VerifySession(ctx context.Context, token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, ErrInvalidSession
	}
	if claims.ID == "" || claims.UserID == "" {
		return Claims{}, ErrInvalidSession
	}

	rec, err := s.sessions.FindByID(ctx, claims.ID)
	if err != nil {
		return Claims{}, fmt.Errorf("find session: %w", err)
	}
	if rec == nil || rec.UserID != claims.UserID || rec.IsExpired(s.now()) {
		return Claims{}, ErrInvalidSession
	}
	return claims, nil
}

// DeleteSession ends a session. Deleting an unknown session is not an error.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return errors.New("account: session id is required")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info("session deleted", zap.String("session_id", sessionID))
	return nil
}
