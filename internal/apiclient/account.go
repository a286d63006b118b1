package apiclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	"seva-health/internal/authstate"
	"seva-health/internal/onboarding"
)

type identityWire struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type sessionWire struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) CreateIdentity(ctx context.Context, email, password, name string) (onboarding.Identity, error) {
	var out identityWire
	in := map[string]string{"email": email, "password": password, "name": name}
	if err := c.call(ctx, http.MethodPost, "/v1/account", "", in, &out); err != nil {
		return onboarding.Identity{}, err
	}
	return onboarding.Identity{ID: out.ID, Email: out.Email, Name: out.Name}, nil
}

func (c *Client) DeleteIdentity(ctx context.Context, email, password string) error {
	return c.call(ctx, http.MethodPost, "/v1/account/delete", "", credentials{email, password}, nil)
}

func (c *Client) CreateSession(ctx context.Context, email, password string) (onboarding.Session, error) {
	var out sessionWire
	if err := c.call(ctx, http.MethodPost, "/v1/account/sessions", "", credentials{email, password}, &out); err != nil {
		return onboarding.Session{}, err
	}
	return onboarding.Session{ID: out.ID, UserID: out.UserID, Token: out.Token, ExpiresAt: out.ExpiresAt}, nil
}

func (c *Client) DeleteSession(ctx context.Context, s onboarding.Session) error {
	return c.call(ctx, http.MethodDelete, "/v1/account/sessions/current", s.Token, nil, nil)
}

func (c *Client) CreateProfile(ctx context.Context, s onboarding.Session, p onboarding.Profile) (onboarding.Profile, error) {
	var out onboarding.Profile
	if err := c.call(ctx, http.MethodPost, "/v1/profiles", s.Token, p, &out); err != nil {
		return onboarding.Profile{}, err
	}
	return out, nil
}

func (c *Client) GetProfile(ctx context.Context, token string) (onboarding.Profile, error) {
	var out onboarding.Profile
	if err := c.call(ctx, http.MethodGet, "/v1/profiles/me", token, nil, &out); err != nil {
		return onboarding.Profile{}, err
	}
	return out, nil
}

func (c *Client) Me(ctx context.Context, token string) (onboarding.Identity, error) {
	var out identityWire
	if err := c.call(ctx, http.MethodGet, "/v1/account", token, nil, &out); err != nil {
		return onboarding.Identity{}, err
	}
	return onboarding.Identity{ID: out.ID, Email: out.Email, Name: out.Name}, nil
}

func (c *Client) RequestRecovery(ctx context.Context, email string) error {
	return c.call(ctx, http.MethodPost, "/v1/account/recovery", "", map[string]string{"email": email}, nil)
}

func (c *Client) CompleteRecovery(ctx context.Context, token, password string) error {
	in := map[string]string{"token": token, "password": password}
	return c.call(ctx, http.MethodPut, "/v1/account/recovery", "", in, nil)
}

// AuthBackend adapts the client to authstate.Backend.
type AuthBackend struct {
	Client *Client
}

var _ authstate.Backend = AuthBackend{}
var _ onboarding.Provisioner = (*Client)(nil)

func (b AuthBackend) Login(ctx context.Context, email, password string) (authstate.Session, error) {
	s, err := b.Client.CreateSession(ctx, email, password)
	if err != nil {
		return authstate.Session{}, err
	}
	return authstate.Session{
		ID:        s.ID,
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Account:   authstate.Account{ID: s.UserID, Email: email},
	}, nil
}

func (b AuthBackend) Current(ctx context.Context, token string) (authstate.Account, error) {
	ident, err := b.Client.Me(ctx, token)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			return authstate.Account{}, errors.Join(authstate.ErrSessionRejected, err)
		}
		return authstate.Account{}, err
	}
	return authstate.Account{ID: ident.ID, Email: ident.Email, Name: ident.Name}, nil
}

func (b AuthBackend) Logout(ctx context.Context, token string) error {
	err := b.Client.DeleteSession(ctx, onboarding.Session{Token: token})
	if IsStatus(err, http.StatusUnauthorized) {
		return errors.Join(authstate.ErrSessionRejected, err)
	}
	return err
}
