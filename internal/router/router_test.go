package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"seva-health/internal/mailer"
	"seva-health/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type inbox struct {
	mu   sync.Mutex
	mail []mailer.Email
}

func (i *inbox) Send(_ context.Context, e mailer.Email) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.mail = append(i.mail, e)
	return "id", nil
}

func newServer(t *testing.T) (*httptest.Server, *inbox) {
	t.Helper()
	box := &inbox{}
	h, err := router.NewRouter(router.Options{
		JWTSecret:  "router-test-secret",
		SessionTTL: time.Hour,
		Mailer:     box,
		BaseURL:    "https://seva.test",
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts, box
}

func doReq(t *testing.T, baseURL, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	ts, _ := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), `"status":"ok"`)

	st, body = doReq(t, ts.URL, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), "seva_http_request_duration_seconds")
}

func TestHTTP_EndToEnd_SignupProfileAndBooking(t *testing.T) {
	ts, _ := newServer(t)

	creds := map[string]any{"email": "asha@example.com", "password": "s3cretpass"}

	// 1) Create identity
	st, body := doReq(t, ts.URL, http.MethodPost, "/v1/account", "", map[string]any{
		"email": "asha@example.com", "password": "s3cretpass", "name": "Asha",
	})
	require.Equal(t, http.StatusCreated, st, string(body))
	ident := decode[map[string]any](t, body)
	userID, _ := ident["id"].(string)
	require.NotEmpty(t, userID)
	assert.NotContains(t, string(body), "password")

	// 2) Same email again is a conflict with a readable message
	st, body = doReq(t, ts.URL, http.MethodPost, "/v1/account", "", map[string]any{
		"email": "asha@example.com", "password": "s3cretpass", "name": "Asha",
	})
	assert.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "a user with the same email already exists", decode[map[string]string](t, body)["error"])

	// 3) Session
	st, body = doReq(t, ts.URL, http.MethodPost, "/v1/account/sessions", "", creds)
	require.Equal(t, http.StatusCreated, st, string(body))
	token := decode[map[string]any](t, body)["token"].(string)

	// 4) Protected routes need the token
	st, _ = doReq(t, ts.URL, http.MethodGet, "/v1/account", "", nil)
	assert.Equal(t, http.StatusUnauthorized, st)
	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/account", token, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, userID, decode[map[string]any](t, body)["id"])

	// 5) Profile document
	st, body = doReq(t, ts.URL, http.MethodPost, "/v1/profiles", token, map[string]any{
		"id": userID, "gender": "female", "age": "34", "weight": "70", "height": "175", "blood_group": "O+",
	})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/profiles", token, map[string]any{"id": userID})
	assert.Equal(t, http.StatusConflict, st)

	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/profiles/me", token, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "O+", decode[map[string]any](t, body)["blood_group"])

	// 6) Directory and booking
	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/specializations", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.NotEmpty(t, decode[[]map[string]any](t, body))

	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/specializations/cardiology/doctors", "", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]map[string]any](t, body), 2)

	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/doctors/dr-sen/slots?date="+date, "", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	assert.Contains(t, string(body), `"14:00"`)

	booking := map[string]any{
		"doctor_id": "dr-sen", "date": date, "slot": "11:00", "opd_type": "offline",
		"payment_ref": "pay_1", "idempotency_key": "k1",
	}
	st, body = doReq(t, ts.URL, http.MethodPost, "/v1/appointments", token, booking)
	require.Equal(t, http.StatusCreated, st, string(body))
	appt := decode[map[string]any](t, body)
	assert.EqualValues(t, 100, appt["pre_booking_amount"])
	assert.Equal(t, "booked", appt["status"])

	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/appointments", token, booking)
	assert.Equal(t, http.StatusOK, st)

	st, body = doReq(t, ts.URL, http.MethodPost, "/v1/appointments", token, map[string]any{
		"doctor_id": "dr-sen", "date": date, "slot": "11:00", "opd_type": "home", "payment_ref": "p",
	})
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Contains(t, string(body), "opd_type")

	st, body = doReq(t, ts.URL, http.MethodGet, "/v1/appointments", token, nil)
	require.Equal(t, http.StatusOK, st)
	assert.Len(t, decode[[]map[string]any](t, body), 1)

	// 7) Logout revokes the token
	st, _ = doReq(t, ts.URL, http.MethodDelete, "/v1/account/sessions/current", token, nil)
	require.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, http.MethodGet, "/v1/account", token, nil)
	assert.Equal(t, http.StatusUnauthorized, st)

	// 8) Delete identity frees the email
	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/account/delete", "", creds)
	require.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/account/sessions", "", creds)
	assert.Equal(t, http.StatusUnauthorized, st)
}

func TestHTTP_Recovery(t *testing.T) {
	ts, box := newServer(t)

	st, _ := doReq(t, ts.URL, http.MethodPost, "/v1/account", "", map[string]any{
		"email": "ravi@example.com", "password": "s3cretpass", "name": "Ravi",
	})
	require.Equal(t, http.StatusCreated, st)

	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/account/recovery", "", map[string]any{"email": "ravi@example.com"})
	require.Equal(t, http.StatusOK, st)

	box.mu.Lock()
	require.Len(t, box.mail, 1)
	html := box.mail[0].HTML
	box.mu.Unlock()
	assert.Contains(t, html, "https://seva.test/v1/account/recovery?token=")

	i := strings.Index(html, "?token=") + len("?token=")
	token := html[i : i+36]

	st, body := doReq(t, ts.URL, http.MethodGet, "/v1/account/recovery?token="+token, "", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Contains(t, string(body), "seva recover --token "+token)

	st, _ = doReq(t, ts.URL, http.MethodPut, "/v1/account/recovery", "", map[string]any{"token": token, "password": "n3wpassword"})
	require.Equal(t, http.StatusOK, st)

	st, _ = doReq(t, ts.URL, http.MethodPost, "/v1/account/sessions", "", map[string]any{"email": "ravi@example.com", "password": "n3wpassword"})
	assert.Equal(t, http.StatusCreated, st)

	st, _ = doReq(t, ts.URL, http.MethodPut, "/v1/account/recovery", "", map[string]any{"token": token, "password": "an0therpass"})
	assert.Equal(t, http.StatusConflict, st)
}

func TestHTTP_BadBodies(t *testing.T) {
	ts, _ := newServer(t)

	st, body := doReq(t, ts.URL, http.MethodPost, "/v1/account", "", map[string]any{"email": "a@b.co", "password": "s3cretpass"})
	assert.Equal(t, http.StatusBadRequest, st)
	assert.Equal(t, "name is required", decode[map[string]string](t, body)["error"])

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/v1/account/sessions", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
