// Package onboarding drives the three-stage signup wizard: credentials,
// biometrics, then optional medical details. Each forward step is gated by
// validation of the current stage; submission provisions the remote identity,
// session and profile document in that order.
package onboarding

import (
	"context"
	"errors"
	"strings"
	"sync"

	"seva-health/internal/logging"

	"go.uber.org/zap"
)

// Provisioner is the remote account/profile service.
type Provisioner interface {
	CreateIdentity(ctx context.Context, email, password, name string) (Identity, error)
	CreateSession(ctx context.Context, email, password string) (Session, error)
	CreateProfile(ctx context.Context, session Session, p Profile) (Profile, error)
	DeleteSession(ctx context.Context, session Session) error
	DeleteIdentity(ctx context.Context, email, password string) error
}

type Result struct {
	Identity Identity
	Session  Session
	Profile  Profile
}

type Options struct {
	Policy Policy
	Photos PhotoDefaults
	Logger *zap.Logger
}

type Wizard struct {
	mu         sync.Mutex
	stage      Stage
	draft      Draft
	lastErr    string
	submitting bool
	completed  bool

	policy Policy
	photos PhotoDefaults
	prov   Provisioner
	log    *zap.Logger
}

func NewWizard(prov Provisioner, opts Options) *Wizard {
	policy := opts.Policy
	if policy.MinPasswordLength <= 0 {
		policy.MinPasswordLength = DefaultMinPasswordLength
	}
	return &Wizard{
		stage:  StageCredentials,
		policy: policy,
		photos: opts.Photos,
		prov:   prov,
		log:    logging.OrNop(opts.Logger).Named("onboarding"),
	}
}

func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// LastError is the message of the most recent failed transition or submission.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

func (w *Wizard) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.completed
}

func (w *Wizard) SetCredentials(c Credentials) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Credentials = c
}

func (w *Wizard) SetBiometrics(b Biometrics) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Biometrics = b
}

func (w *Wizard) SetMedical(m Medical) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Medical = m
}

// Next advances one stage when the current stage validates. On failure the
// stage is unchanged and the returned *ValidationError is also kept as LastError.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completed {
		return ErrAlreadySubmitted
	}
	w.lastErr = ""

	var verr *ValidationError
	switch w.stage {
	case StageCredentials:
		verr = validateCredentials(w.draft.Credentials, w.policy)
	case StageBiometrics:
		verr = validateBiometrics(w.draft.Biometrics, w.policy)
	default:
		return ErrWrongStage
	}
	if verr != nil {
		w.lastErr = verr.Message
		return verr
	}

	w.stage++
	return nil
}

// Back returns to the previous stage without validating or clearing anything.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.completed || w.submitting {
		return ErrWrongStage
	}
	if w.stage == StageCredentials {
		return ErrWrongStage
	}
	w.stage--
	return nil
}

// Submit provisions the account from stage 3. It runs once: concurrent calls
// get ErrSubmitInProgress and calls after success get ErrAlreadySubmitted.
// On failure the wizard stays on stage 3 with the draft intact and LastError
// holding the remote message.
func (w *Wizard) Submit(ctx context.Context) (Result, error) {
	w.mu.Lock()
	switch {
	case w.completed:
		w.mu.Unlock()
		return Result{}, ErrAlreadySubmitted
	case w.submitting:
		w.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	case w.stage != StageMedical:
		w.mu.Unlock()
		return Result{}, ErrWrongStage
	}
	w.lastErr = ""
	if verr := validateMedical(w.draft.Medical); verr != nil {
		w.lastErr = verr.Message
		w.mu.Unlock()
		return Result{}, verr
	}
	w.submitting = true
	draft := w.draft
	w.mu.Unlock()

	res, err := w.provision(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.lastErr = err.Error()
		return Result{}, err
	}
	w.completed = true
	return res, nil
}

func (w *Wizard) provision(ctx context.Context, d Draft) (Result, error) {
	email := strings.TrimSpace(d.Credentials.Email)
	password := d.Credentials.Password
	name := strings.TrimSpace(d.Credentials.Name)

	ident, err := w.prov.CreateIdentity(ctx, email, password, name)
	if err != nil {
		w.log.Warn("identity creation failed", zap.String("email", email), zap.Error(err))
		return Result{}, &IdentityCreationError{Err: err}
	}

	sess, err := w.prov.CreateSession(ctx, email, password)
	if err != nil {
		w.log.Warn("session creation failed", zap.String("user_id", ident.ID), zap.Error(err))
		return Result{}, &IdentityCreationError{
			Err:             err,
			CompensationErr: w.compensate(ctx, ident, nil, email, password),
		}
	}

	profile, err := w.prov.CreateProfile(ctx, sess, BuildProfile(ident, d, w.photos))
	if err != nil {
		w.log.Warn("profile creation failed", zap.String("user_id", ident.ID), zap.Error(err))
		return Result{}, &ProfileCreationError{
			Err:             err,
			CompensationErr: w.compensate(ctx, ident, &sess, email, password),
		}
	}

	w.log.Info("account provisioned", zap.String("user_id", ident.ID))
	return Result{Identity: ident, Session: sess, Profile: profile}, nil
}

// compensate removes what provisioning created so far. A non-nil result means
// the identity may still exist without a profile.
func (w *Wizard) compensate(ctx context.Context, ident Identity, sess *Session, email, password string) error {
	var errs []error
	if sess != nil {
		if err := w.prov.DeleteSession(ctx, *sess); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.prov.DeleteIdentity(ctx, email, password); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		w.log.Error("compensation failed, identity left without profile",
			zap.String("user_id", ident.ID), zap.Error(err))
	}
	return err
}

// BuildProfile merges the draft into the profile payload for ident, picking a
// default photo by gender when none was given.
func BuildProfile(ident Identity, d Draft, photos PhotoDefaults) Profile {
	gender := d.Biometrics.Gender
	if gender == "" {
		gender = GenderNotToAnswer
	}
	photo := strings.TrimSpace(d.Medical.PhotoURL)
	if photo == "" {
		photo = photos.For(gender)
	}
	email := ident.Email
	if email == "" {
		email = strings.TrimSpace(d.Credentials.Email)
	}
	name := ident.Name
	if name == "" {
		name = strings.TrimSpace(d.Credentials.Name)
	}

	return Profile{
		ID:             ident.ID,
		Email:          email,
		Name:           name,
		Gender:         gender,
		Age:            strings.TrimSpace(d.Biometrics.Age),
		Weight:         strings.TrimSpace(d.Biometrics.Weight),
		Height:         strings.TrimSpace(d.Biometrics.Height),
		BloodGroup:     strings.TrimSpace(d.Medical.BloodGroup),
		AdditionalInfo: strings.TrimSpace(d.Medical.AdditionalInfo),
		PhotoURL:       photo,
	}
}
