// Package account is the identity, session and profile document service
// behind the /v1/account and /v1/profiles routes.
package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"seva-health/internal/logging"
	"seva-health/internal/mailer"
	"seva-health/internal/metrics"
	"seva-health/internal/models"
	"seva-health/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL        = 30 * 24 * time.Hour
	DefaultMinPasswordLength = 8

	recoveryTokenTTL   = 15 * time.Minute
	recoveryRateWindow = 10 * time.Minute
	recoveryRateLimit  = 5
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type IdentityRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
	FindByID(ctx context.Context, id string) (*models.Identity, error)
	Create(ctx context.Context, ident *models.Identity) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

type RecoveryTokenRepository interface {
	Create(ctx context.Context, token *models.RecoveryToken) error
	FindByToken(ctx context.Context, token string) (*models.RecoveryToken, error)
	MarkUsed(ctx context.Context, token string) error
	CountRecentByEmail(ctx context.Context, email string, duration time.Duration) (int64, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, p *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	Delete(ctx context.Context, id string) error
}

type Repositories struct {
	Identities     IdentityRepository
	Sessions       SessionRepository
	RecoveryTokens RecoveryTokenRepository
	Profiles       ProfileRepository
}

type Options struct {
	JWTSecret         string
	SessionTTL        time.Duration
	MinPasswordLength int
	Mailer            mailer.Mailer
	Logger            *zap.Logger
	// Now overrides the clock used for token expiry checks.
	Now func() time.Time
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

type Service struct {
	identities IdentityRepository
	sessions   SessionRepository
	recovery   RecoveryTokenRepository
	profiles   ProfileRepository

	mailer      mailer.Mailer
	secret      []byte
	ttl         time.Duration
	minPassword int
	cost        int
	log         *zap.Logger
	now         func() time.Time
}

func NewService(repos Repositories, opts Options) (*Service, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("account: jwt secret is required")
	}
	if repos.Identities == nil || repos.Sessions == nil || repos.RecoveryTokens == nil || repos.Profiles == nil {
		return nil, errors.New("account: all repositories are required")
	}

	s := &Service{
		identities:  repos.Identities,
		sessions:    repos.Sessions,
		recovery:    repos.RecoveryTokens,
		profiles:    repos.Profiles,
		mailer:      opts.Mailer,
		secret:      []byte(opts.JWTSecret),
		ttl:         opts.SessionTTL,
		minPassword: opts.MinPasswordLength,
		cost:        opts.BcryptCost,
		log:         logging.OrNop(opts.Logger).Named("account"),
		now:         opts.Now,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultSessionTTL
	}
	if s.minPassword <= 0 {
		s.minPassword = DefaultMinPasswordLength
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.mailer == nil {
		s.mailer = mailer.NewLogMailer(s.log)
	}
	return s, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) checkPassword(password string) error {
	if utf8.RuneCountInString(password) < s.minPassword {
		return ErrWeakPassword
	}
	return nil
}

// CreateIdentity registers a new email/password identity.
func (s *Service) CreateIdentity(ctx context.Context, email, password, name string) (models.Identity, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if !emailPattern.MatchString(email) {
		return models.Identity{}, ErrInvalidEmail
	}
	if err := s.checkPassword(password); err != nil {
		return models.Identity{}, err
	}
	if name == "" {
		return models.Identity{}, ErrNameRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	ident := &models.Identity{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.identities.Create(ctx, ident); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Identity{}, ErrEmailTaken
		}
		return models.Identity{}, fmt.Errorf("create identity: %w", err)
	}

	metrics.IdentitiesCreated.Inc()
	s.log.Info("identity created", zap.String("user_id", ident.ID))
	return *ident, nil
}

// authenticate returns the identity when password matches its stored hash.
func (s *Service) authenticate(ctx context.Context, email, password string) (*models.Identity, error) {
	ident, err := s.identities.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if ident == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ident.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return ident, nil
}

// DeleteIdentity removes the identity with its sessions and profile document.
// The credentials must match.
func (s *Service) DeleteIdentity(ctx context.Context, email, password string) error {
	ident, err := s.authenticate(ctx, email, password)
	if err != nil {
		return err
	}

	if _, err := s.sessions.DeleteByUser(ctx, ident.ID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	if err := s.profiles.Delete(ctx, ident.ID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.identities.Delete(ctx, ident.ID); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}

	metrics.IdentitiesDeleted.Inc()
	s.log.Info("identity deleted", zap.String("user_id", ident.ID))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (models.Identity, error) {
	ident, err := s.identities.FindByID(ctx, id)
	if err != nil {
		return models.Identity{}, fmt.Errorf("find identity: %w", err)
	}
	if ident == nil {
		return models.Identity{}, ErrNotFound
	}
	return *ident, nil
}
