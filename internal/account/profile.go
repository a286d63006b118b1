package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seva-health/internal/metrics"
	"seva-health/internal/models"
	"seva-health/internal/repository"

	"go.uber.org/zap"
)

// ProfileInput is the client-supplied part of a profile document.
type ProfileInput struct {
	ID             string
	Email          string
	Name           string
	Gender         string
	Age            string
	Weight         string
	Height         string
	BloodGroup     string
	AdditionalInfo string
	PhotoURL       string
}

// CreateProfile stores the profile document of userID. The document id is
// always the identity id; a different ID in the input is rejected.
func (s *Service) CreateProfile(ctx context.Context, userID string, in ProfileInput) (models.Profile, error) {
	if in.ID != "" && in.ID != userID {
		return models.Profile{}, ErrProfileMismatch
	}

	ident, err := s.Get(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	email := normalizeEmail(in.Email)
	if email == "" {
		email = ident.Email
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = ident.Name
	}
	gender := in.Gender
	if gender == "" {
		gender = "not-to-answer"
	}

	p := &models.Profile{
		ID:             ident.ID,
		Email:          email,
		Name:           name,
		Gender:         gender,
		Age:            strings.TrimSpace(in.Age),
		Weight:         strings.TrimSpace(in.Weight),
		Height:         strings.TrimSpace(in.Height),
		BloodGroup:     strings.TrimSpace(in.BloodGroup),
		AdditionalInfo: strings.TrimSpace(in.AdditionalInfo),
		PhotoURL:       strings.TrimSpace(in.PhotoURL),
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Profile{}, ErrProfileExists
		}
		return models.Profile{}, fmt.Errorf("create profile: %w", err)
	}

	metrics.ProfilesCreated.Inc()
	s.log.Info("profile created", zap.String("user_id", p.ID))
	return *p, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	if p == nil {
		return models.Profile{}, ErrNotFound
	}
	return *p, nil
}
