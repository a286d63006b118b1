package account

import "errors"

// Messages are returned to API clients as is.
var (
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrWeakPassword       = errors.New("password does not meet the minimum length")
	ErrNameRequired       = errors.New("name is required")
	ErrEmailTaken         = errors.New("a user with the same email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials, please check the email and password")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrNotFound           = errors.New("not found")
	ErrProfileExists      = errors.New("profile document already exists")
	ErrProfileMismatch    = errors.New("profile id does not match the signed-in user")
	ErrTooManyRequests    = errors.New("too many recovery requests, please try again later")
	ErrInvalidToken       = errors.New("invalid recovery token")
	ErrTokenExpired       = errors.New("recovery token has expired")
	ErrTokenUsed          = errors.New("recovery token has already been used")
)
