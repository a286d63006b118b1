package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test provisioner
// -------------------------

type fakeProvisioner struct {
	identityErr error
	sessionErr  error
	profileErr  error
	deleteErr   error

	calls           []string
	createdProfile  Profile
	deletedIdentity bool
	deletedSession  bool
}

func (f *fakeProvisioner) CreateIdentity(_ context.Context, email, _, name string) (Identity, error) {
	f.calls = append(f.calls, "identity")
	if f.identityErr != nil {
		return Identity{}, f.identityErr
	}
	return Identity{ID: "user-1", Email: email, Name: name}, nil
}

func (f *fakeProvisioner) CreateSession(_ context.Context, _, _ string) (Session, error) {
	f.calls = append(f.calls, "session")
	if f.sessionErr != nil {
		return Session{}, f.sessionErr
	}
	return Session{ID: "sess-1", UserID: "user-1", Token: "token"}, nil
}

func (f *fakeProvisioner) CreateProfile(_ context.Context, _ Session, p Profile) (Profile, error) {
	f.calls = append(f.calls, "profile")
	if f.profileErr != nil {
		return Profile{}, f.profileErr
	}
	f.createdProfile = p
	return p, nil
}

func (f *fakeProvisioner) DeleteSession(context.Context, Session) error {
	f.calls = append(f.calls, "delete-session")
	f.deletedSession = true
	return nil
}

func (f *fakeProvisioner) DeleteIdentity(context.Context, string, string) error {
	f.calls = append(f.calls, "delete-identity")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIdentity = true
	return nil
}

func validCredentials() Credentials {
	return Credentials{
		Email:           "asha@example.com",
		Password:        "s3cretpass",
		ConfirmPassword: "s3cretpass",
		Name:            "Asha",
	}
}

func validBiometrics() Biometrics {
	return Biometrics{Gender: GenderFemale, Age: "34", Weight: "70", Height: "175"}
}

func wizardAtStage3(t *testing.T, prov Provisioner) *Wizard {
	t.Helper()
	w := NewWizard(prov, Options{Policy: DefaultPolicy(), Photos: PhotoDefaults{BaseURL: "https://cdn.test/avatars/"}})
	w.SetCredentials(validCredentials())
	require.NoError(t, w.Next())
	w.SetBiometrics(validBiometrics())
	require.NoError(t, w.Next())
	require.Equal(t, StageMedical, w.Stage())
	return w
}

// -------------------------
// Stage transitions
// -------------------------

func TestWizard_StartsAtCredentials(t *testing.T) {
	w := NewWizard(&fakeProvisioner{}, Options{})
	assert.Equal(t, StageCredentials, w.Stage())
	assert.Empty(t, w.LastError())
}

func TestWizard_ValidCredentialsAdvance(t *testing.T) {
	w := NewWizard(&fakeProvisioner{}, Options{Policy: DefaultPolicy()})
	w.SetCredentials(validCredentials())

	require.NoError(t, w.Next())
	assert.Equal(t, StageBiometrics, w.Stage())
	assert.Empty(t, w.LastError())
}

func TestWizard_InvalidCredentialFieldBlocks(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Credentials)
		field  string
	}{
		"bad email":      {func(c *Credentials) { c.Email = "asha.example.com" }, "email"},
		"email spaces":   {func(c *Credentials) { c.Email = "as ha@example.com" }, "email"},
		"short password": {func(c *Credentials) { c.Password, c.ConfirmPassword = "short", "short" }, "password"},
		"mismatch":       {func(c *Credentials) { c.ConfirmPassword = "different1" }, "confirm_password"},
		"missing name":   {func(c *Credentials) { c.Name = "   " }, "name"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := NewWizard(&fakeProvisioner{}, Options{Policy: DefaultPolicy()})
			c := validCredentials()
			tc.mutate(&c)
			w.SetCredentials(c)

			err := w.Next()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, StageCredentials, verr.Stage)
			assert.Equal(t, StageCredentials, w.Stage())
			assert.Equal(t, verr.Message, w.LastError())
		})
	}
}

func TestWizard_PasswordPolicyIsConfigurable(t *testing.T) {
	w := NewWizard(&fakeProvisioner{}, Options{Policy: Policy{MinPasswordLength: 6}})
	w.SetCredentials(Credentials{Email: "a@b.co", Password: "sixsix", Name: "A"})

	require.NoError(t, w.Next())
	assert.Equal(t, StageBiometrics, w.Stage())
}

func TestWizard_BiometricsValidation(t *testing.T) {
	cases := map[string]struct {
		b     Biometrics
		field string
	}{
		"missing age":     {Biometrics{Weight: "70", Height: "175"}, "age"},
		"age not numeric": {Biometrics{Age: "thirty", Weight: "70", Height: "175"}, "age"},
		"age too high":    {Biometrics{Age: "121", Weight: "70", Height: "175"}, "age"},
		"age zero":        {Biometrics{Age: "0", Weight: "70", Height: "175"}, "age"},
		"bad weight":      {Biometrics{Age: "30", Weight: "heavy", Height: "175"}, "weight"},
		"infinite age":    {Biometrics{Age: "+Inf", Weight: "70", Height: "175"}, "age"},
		"infinite weight": {Biometrics{Age: "30", Weight: "inf", Height: "175"}, "weight"},
		"hex height":      {Biometrics{Age: "30", Weight: "70", Height: "0x1p3"}, "height"},
		"missing height":  {Biometrics{Age: "30", Weight: "70"}, "height"},
		"bad gender":      {Biometrics{Gender: "other", Age: "30", Weight: "70", Height: "175"}, "gender"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := NewWizard(&fakeProvisioner{}, Options{Policy: DefaultPolicy()})
			w.SetCredentials(validCredentials())
			require.NoError(t, w.Next())

			w.SetBiometrics(tc.b)
			var verr *ValidationError
			require.ErrorAs(t, w.Next(), &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, StageBiometrics, w.Stage())
		})
	}
}

func TestWizard_AgeRangeCheckIsOptional(t *testing.T) {
	w := NewWizard(&fakeProvisioner{}, Options{Policy: Policy{MinPasswordLength: 8, RequireConfirmation: true}})
	w.SetCredentials(validCredentials())
	require.NoError(t, w.Next())

	w.SetBiometrics(Biometrics{Age: "150", Weight: "70", Height: "175"})
	require.NoError(t, w.Next())
}

func TestWizard_BackKeepsData(t *testing.T) {
	w := wizardAtStage3(t, &fakeProvisioner{})

	require.NoError(t, w.Back())
	assert.Equal(t, StageBiometrics, w.Stage())
	require.NoError(t, w.Back())
	assert.Equal(t, StageCredentials, w.Stage())
	assert.ErrorIs(t, w.Back(), ErrWrongStage)

	d := w.Draft()
	assert.Equal(t, validCredentials(), d.Credentials)
	assert.Equal(t, validBiometrics(), d.Biometrics)
}

func TestWizard_NextOnLastStageRefused(t *testing.T) {
	w := wizardAtStage3(t, &fakeProvisioner{})
	assert.ErrorIs(t, w.Next(), ErrWrongStage)
	assert.Equal(t, StageMedical, w.Stage())
}

func TestWizard_SubmitOnlyFromStage3(t *testing.T) {
	prov := &fakeProvisioner{}
	w := NewWizard(prov, Options{})

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongStage)
	assert.Empty(t, prov.calls)
}

// -------------------------
// Provisioning
// -------------------------

func TestWizard_SubmitProvisionsInOrder(t *testing.T) {
	prov := &fakeProvisioner{}
	w := wizardAtStage3(t, prov)
	w.SetMedical(Medical{BloodGroup: "O+", AdditionalInfo: "penicillin allergy"})

	res, err := w.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"identity", "session", "profile"}, prov.calls)
	assert.Equal(t, "user-1", res.Identity.ID)
	assert.Equal(t, "token", res.Session.Token)
	assert.True(t, w.Completed())

	p := prov.createdProfile
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "asha@example.com", p.Email)
	assert.Equal(t, GenderFemale, p.Gender)
	assert.Equal(t, "O+", p.BloodGroup)
	assert.Equal(t, "https://cdn.test/avatars/female.png", p.PhotoURL)

	_, err = w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, prov.calls, 3)
}

func TestWizard_SubmitRejectsUnknownBloodGroup(t *testing.T) {
	prov := &fakeProvisioner{}
	w := wizardAtStage3(t, prov)
	w.SetMedical(Medical{BloodGroup: "C+"})

	_, err := w.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "blood_group", verr.Field)
	assert.Empty(t, prov.calls)
}

func TestWizard_IdentityFailureKeepsDraft(t *testing.T) {
	prov := &fakeProvisioner{identityErr: errors.New("A user with the same email already exists.")}
	w := wizardAtStage3(t, prov)
	w.SetMedical(Medical{BloodGroup: "AB-"})
	before := w.Draft()

	_, err := w.Submit(context.Background())

	var ierr *IdentityCreationError
	require.ErrorAs(t, err, &ierr)
	assert.False(t, ierr.Orphaned())
	assert.Equal(t, StageMedical, w.Stage())
	assert.Equal(t, before, w.Draft())
	assert.Equal(t, "A user with the same email already exists.", w.LastError())
	assert.False(t, w.Completed())
	assert.Equal(t, []string{"identity"}, prov.calls)
}

func TestWizard_ProfileFailureCompensates(t *testing.T) {
	prov := &fakeProvisioner{profileErr: errors.New("document store unavailable")}
	w := wizardAtStage3(t, prov)

	_, err := w.Submit(context.Background())

	var perr *ProfileCreationError
	require.ErrorAs(t, err, &perr)
	assert.False(t, perr.Orphaned())
	assert.True(t, prov.deletedSession)
	assert.True(t, prov.deletedIdentity)
	assert.Equal(t, []string{"identity", "session", "profile", "delete-session", "delete-identity"}, prov.calls)
	assert.Equal(t, "document store unavailable", w.LastError())
	assert.Equal(t, StageMedical, w.Stage())
}

func TestWizard_SessionFailureCompensates(t *testing.T) {
	prov := &fakeProvisioner{sessionErr: errors.New("rate limited")}
	w := wizardAtStage3(t, prov)

	_, err := w.Submit(context.Background())

	var ierr *IdentityCreationError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, prov.deletedIdentity)
	assert.False(t, prov.deletedSession)
}

func TestWizard_CompensationFailureReportsOrphan(t *testing.T) {
	prov := &fakeProvisioner{
		profileErr: errors.New("document store unavailable"),
		deleteErr:  errors.New("network down"),
	}
	w := wizardAtStage3(t, prov)

	_, err := w.Submit(context.Background())

	var perr *ProfileCreationError
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.Orphaned())
}

func TestWizard_RetryAfterFailure(t *testing.T) {
	prov := &fakeProvisioner{identityErr: errors.New("temporarily unavailable")}
	w := wizardAtStage3(t, prov)

	_, err := w.Submit(context.Background())
	require.Error(t, err)

	prov.identityErr = nil
	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, w.LastError())
}

func TestBuildProfile_DefaultPhotos(t *testing.T) {
	photos := PhotoDefaults{BaseURL: "https://cdn.test"}
	ident := Identity{ID: "u", Email: "e@x.io", Name: "N"}

	cases := map[Gender]string{
		GenderMale:        "https://cdn.test/male.png",
		GenderFemale:      "https://cdn.test/female.png",
		GenderNotToAnswer: "https://cdn.test/default.png",
		"":                "https://cdn.test/default.png",
	}
	for g, want := range cases {
		p := BuildProfile(ident, Draft{Biometrics: Biometrics{Gender: g}}, photos)
		assert.Equal(t, want, p.PhotoURL, string(g))
	}

	p := BuildProfile(ident, Draft{Medical: Medical{PhotoURL: "https://me.test/pic.jpg"}}, photos)
	assert.Equal(t, "https://me.test/pic.jpg", p.PhotoURL)
	assert.Equal(t, GenderNotToAnswer, p.Gender)
}
