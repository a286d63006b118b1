package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seva-health/internal/apiclient"
	"seva-health/internal/authstate"
	"seva-health/internal/kv"
	"seva-health/internal/onboarding"
	"seva-health/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newClient(t *testing.T) *apiclient.Client {
	t.Helper()
	h, err := router.NewRouter(router.Options{JWTSecret: "client-test", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	c, err := apiclient.New(ts.URL, 5*time.Second, nil)
	require.NoError(t, err)
	return c
}

func completedWizard(c onboarding.Provisioner, email string) *onboarding.Wizard {
	w := onboarding.NewWizard(c, onboarding.Options{
		Policy: onboarding.DefaultPolicy(),
		Photos: onboarding.PhotoDefaults{BaseURL: "https://cdn.seva.test"},
	})
	w.SetCredentials(onboarding.Credentials{Email: email, Password: "s3cretpass", ConfirmPassword: "s3cretpass", Name: "Asha"})
	_ = w.Next()
	w.SetBiometrics(onboarding.Biometrics{Gender: onboarding.GenderFemale, Age: "34", Weight: "70", Height: "175"})
	_ = w.Next()
	w.SetMedical(onboarding.Medical{BloodGroup: "B+"})
	return w
}

func TestSignupAgainstServer(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	w := completedWizard(c, "asha@example.com")
	require.Equal(t, onboarding.StageMedical, w.Stage())

	res, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Session.Token)
	assert.Equal(t, res.Identity.ID, res.Profile.ID)

	p, err := c.GetProfile(ctx, res.Session.Token)
	require.NoError(t, err)
	assert.Equal(t, "B+", p.BloodGroup)
	assert.Equal(t, onboarding.GenderFemale, p.Gender)
	assert.Equal(t, "https://cdn.seva.test/female.png", p.PhotoURL)
}

func TestSignupDuplicateEmailShowsServerMessage(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateIdentity(ctx, "asha@example.com", "s3cretpass", "Asha")
	require.NoError(t, err)

	w := completedWizard(c, "asha@example.com")
	_, err = w.Submit(ctx)

	var ierr *onboarding.IdentityCreationError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, apiclient.IsStatus(err, http.StatusConflict))
	assert.Equal(t, onboarding.StageMedical, w.Stage())
	assert.Equal(t, "a user with the same email already exists", w.LastError())
	assert.Equal(t, "B+", w.Draft().Medical.BloodGroup)
}

func TestAuthBackendWithHolder(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateIdentity(ctx, "ravi@example.com", "s3cretpass", "Ravi")
	require.NoError(t, err)

	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	h := authstate.NewHolder(store, apiclient.AuthBackend{Client: c}, nil)
	_, err = h.Init(ctx)
	require.NoError(t, err)

	_, err = h.Login(ctx, "ravi@example.com", "wrong-password")
	var rerr *apiclient.RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusUnauthorized, rerr.StatusCode)

	sess, err := h.Login(ctx, "ravi@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", sess.Account.Name)

	require.NoError(t, h.Logout(ctx))

	// the old token is rejected
	_, err = apiclient.AuthBackend{Client: c}.Current(ctx, sess.Token)
	assert.ErrorIs(t, err, authstate.ErrSessionRejected)
}

func TestAppointmentsAgainstServer(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateIdentity(ctx, "p@example.com", "s3cretpass", "P")
	require.NoError(t, err)
	s, err := c.CreateSession(ctx, "p@example.com", "s3cretpass")
	require.NoError(t, err)

	specs, err := c.Specializations(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, specs)

	docs, err := c.Doctors(ctx, "pediatrics")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	date := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	slots, err := c.Slots(ctx, docs[0].ID, date)
	require.NoError(t, err)
	assert.Len(t, slots, 4)

	appt, err := c.Book(ctx, s.Token, apiclient.BookRequest{
		DoctorID: docs[0].ID, Date: date, Slot: slots[0], OPDType: "online", PaymentRef: "sim_1",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, appt.PreBookingAmount)

	list, err := c.Appointments(ctx, s.Token)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUnreachableServerIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c, err := apiclient.New(base, time.Second, nil)
	require.NoError(t, err)

	_, err = c.CreateIdentity(context.Background(), "a@b.co", "s3cretpass", "A")
	var nerr *apiclient.NetworkError
	require.ErrorAs(t, err, &nerr)
}
