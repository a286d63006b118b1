// Package authstate keeps the single process-wide view of who is signed in.
// It is initialized once at startup from the local store, updated on login
// and logout, and read by every command that needs an account.
package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"seva-health/internal/kv"
	"seva-health/internal/logging"

	"go.uber.org/zap"
)

// StorageKey is where the current session is persisted.
const StorageKey = "com.seva:session"

var (
	ErrNotSignedIn     = errors.New("not signed in, run `seva login` first")
	ErrNotInitialized  = errors.New("authstate: Init has not been called")
	ErrSessionRejected = errors.New("session is no longer valid")
)

type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

func (s Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Backend is the remote side of the session. Current must return an error
// wrapping ErrSessionRejected when the token is no longer accepted.
type Backend interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Current(ctx context.Context, token string) (Account, error)
	Logout(ctx context.Context, token string) error
}

type Status int

const (
	SignedOut Status = iota
	SignedIn
	// Unverified means a stored session exists but the backend could not be
	// reached to confirm it.
	Unverified
)

func (s Status) String() string {
	switch s {
	case SignedIn:
		return "signed in"
	case Unverified:
		return "signed in (unverified)"
	default:
		return "signed out"
	}
}

type Holder struct {
	mu          sync.RWMutex
	store       kv.Store
	backend     Backend
	log         *zap.Logger
	now         func() time.Time
	initialized bool
	status      Status
	session     *Session
}

func NewHolder(store kv.Store, backend Backend, logger *zap.Logger) *Holder {
	return &Holder{
		store:   store,
		backend: backend,
		log:     logging.OrNop(logger).Named("authstate"),
		now:     time.Now,
	}
}

// Init loads the persisted session and confirms it with the backend. A
// rejected or expired session is discarded; an unreachable backend leaves it
// in place as Unverified.
func (h *Holder) Init(ctx context.Context) (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.initialized = true
	h.status, h.session = SignedOut, nil

	raw, ok, err := h.store.Get(ctx, StorageKey)
	if err != nil {
		return SignedOut, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return SignedOut, nil
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil || sess.Token == "" {
		h.log.Warn("discarding unreadable stored session", zap.String("key", StorageKey))
		return SignedOut, h.clearLocked(ctx)
	}
	if sess.expired(h.now()) {
		h.log.Info("stored session expired")
		return SignedOut, h.clearLocked(ctx)
	}

	acct, err := h.backend.Current(ctx, sess.Token)
	switch {
	case err == nil:
		sess.Account = acct
		h.status, h.session = SignedIn, &sess
		return SignedIn, nil
	case errors.Is(err, ErrSessionRejected):
		h.log.Info("stored session rejected by server")
		return SignedOut, h.clearLocked(ctx)
	default:
		h.log.Warn("could not verify stored session", zap.Error(err))
		h.status, h.session = Unverified, &sess
		return Unverified, nil
	}
}

// Login opens a session and persists it.
func (h *Holder) Login(ctx context.Context, email, password string) (Session, error) {
	sess, err := h.backend.Login(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if acct, err := h.backend.Current(ctx, sess.Token); err == nil {
		sess.Account = acct
	}
	if err := h.Adopt(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Adopt makes a session obtained elsewhere (signup) the current one.
func (h *Holder) Adopt(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	h.initialized = true
	h.status, h.session = SignedIn, &sess
	h.log.Info("signed in", zap.String("user_id", sess.Account.ID))
	return nil
}

// Logout ends the remote session and forgets the local one. The local state
// is cleared even when the remote call fails.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == nil {
		return h.clearLocked(ctx)
	}

	var remoteErr error
	if err := h.backend.Logout(ctx, h.session.Token); err != nil && !errors.Is(err, ErrSessionRejected) {
		h.log.Warn("remote logout failed", zap.Error(err))
		remoteErr = err
	}
	return errors.Join(remoteErr, h.clearLocked(ctx))
}

func (h *Holder) clearLocked(ctx context.Context) error {
	h.status, h.session = SignedOut, nil
	if err := h.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (h *Holder) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *Holder) Current() (Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session == nil {
		return Session{}, false
	}
	return *h.session, true
}

// Require is the guard for commands that need an account.
func (h *Holder) Require() (Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.initialized {
		return Session{}, ErrNotInitialized
	}
	if h.session == nil || h.session.expired(h.now()) {
		return Session{}, ErrNotSignedIn
	}
	return *h.session, nil
}
