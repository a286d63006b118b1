package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"seva-health/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	valid      map[string]Account
	currentErr error
	logoutErr  error
	loggedOut  []string
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (Session, error) {
	if password != "s3cretpass" {
		return Session{}, errors.New("invalid credentials, please check the email and password")
	}
	tok := "tok-" + email
	f.valid[tok] = Account{ID: "user-1", Email: email, Name: "Asha"}
	return Session{ID: "sess-1", Token: tok, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeBackend) Current(_ context.Context, token string) (Account, error) {
	if f.currentErr != nil {
		return Account{}, f.currentErr
	}
	acct, ok := f.valid[token]
	if !ok {
		return Account{}, ErrSessionRejected
	}
	return acct, nil
}

func (f *fakeBackend) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	delete(f.valid, token)
	return f.logoutErr
}

func newHolder(t *testing.T) (*Holder, *fakeBackend, *kv.Badger) {
	t.Helper()
	store, err := kv.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	backend := &fakeBackend{valid: map[string]Account{}}
	return NewHolder(store, backend, nil), backend, store
}

func TestHolder_RequireBeforeInit(t *testing.T) {
	h, _, _ := newHolder(t)
	_, err := h.Require()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestHolder_EmptyStoreIsSignedOut(t *testing.T) {
	h, _, _ := newHolder(t)

	st, err := h.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SignedOut, st)
	_, err = h.Require()
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestHolder_LoginPersistsAcrossInit(t *testing.T) {
	h, backend, store := newHolder(t)
	ctx := context.Background()
	_, err := h.Init(ctx)
	require.NoError(t, err)

	sess, err := h.Login(ctx, "asha@example.com", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "user-1", sess.Account.ID)
	assert.Equal(t, SignedIn, h.Status())

	// a fresh process sees the same session
	h2 := NewHolder(store, backend, nil)
	st, err := h2.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, SignedIn, st)
	got, err := h2.Require()
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
}

func TestHolder_LoginFailureKeepsState(t *testing.T) {
	h, _, _ := newHolder(t)
	ctx := context.Background()
	_, err := h.Init(ctx)
	require.NoError(t, err)

	_, err = h.Login(ctx, "asha@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, SignedOut, h.Status())
}

func TestHolder_RejectedSessionIsDiscarded(t *testing.T) {
	h, backend, store := newHolder(t)
	ctx := context.Background()
	_, err := h.Init(ctx)
	require.NoError(t, err)
	sess, err := h.Login(ctx, "asha@example.com", "s3cretpass")
	require.NoError(t, err)

	delete(backend.valid, sess.Token)

	st, err := h.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, SignedOut, st)
	_, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHolder_UnreachableBackendKeepsSession(t *testing.T) {
	h, backend, _ := newHolder(t)
	ctx := context.Background()
	_, err := h.Init(ctx)
	require.NoError(t, err)
	_, err = h.Login(ctx, "asha@example.com", "s3cretpass")
	require.NoError(t, err)

	backend.currentErr = errors.New("dial tcp: connection refused")

	st, err := h.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unverified, st)
	_, err = h.Require()
	assert.NoError(t, err)
}

func TestHolder_ExpiredStoredSession(t *testing.T) {
	h, _, store := newHolder(t)
	ctx := context.Background()

	raw, err := json.Marshal(Session{Token: "old", ExpiresAt: time.Now().Add(-time.Minute)})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, StorageKey, raw))

	st, err := h.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, SignedOut, st)
}

func TestHolder_CorruptStoredSession(t *testing.T) {
	h, _, store := newHolder(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, StorageKey, []byte("{not json")))

	st, err := h.Init(ctx)
	require.NoError(t, err)
	assert.Equal(t, SignedOut, st)
}

func TestHolder_Logout(t *testing.T) {
	h, backend, store := newHolder(t)
	ctx := context.Background()
	_, err := h.Init(ctx)
	require.NoError(t, err)
	sess, err := h.Login(ctx, "asha@example.com", "s3cretpass")
	require.NoError(t, err)

	backend.logoutErr = errors.New("network down")
	err = h.Logout(ctx)
	assert.Error(t, err)

	// local state is gone regardless
	assert.Equal(t, SignedOut, h.Status())
	assert.Equal(t, []string{sess.Token}, backend.loggedOut)
	_, ok, err := store.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	// logging out twice is fine
	require.NoError(t, h.Logout(ctx))
}
