package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrWrongStage       = errors.New("onboarding: operation not allowed at this stage")
	ErrSubmitInProgress = errors.New("onboarding: submission already in progress")
	ErrAlreadySubmitted = errors.New("onboarding: already submitted")
)

// ValidationError blocks a stage transition or submission.
type ValidationError struct {
	Stage   Stage
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IdentityCreationError wraps a failure to create the identity or open its
// session. Error returns the remote message unchanged so it can be shown as is.
type IdentityCreationError struct {
	Err error
	// CompensationErr is set when the identity could not be removed again.
	CompensationErr error
}

func (e *IdentityCreationError) Error() string { return e.Err.Error() }
func (e *IdentityCreationError) Unwrap() error { return e.Err }

// Orphaned reports whether an identity was left behind without a profile.
func (e *IdentityCreationError) Orphaned() bool { return e.CompensationErr != nil }

// ProfileCreationError wraps a failure to store the profile document after the
// identity was created.
type ProfileCreationError struct {
	Err             error
	CompensationErr error
}

func (e *ProfileCreationError) Error() string { return e.Err.Error() }
func (e *ProfileCreationError) Unwrap() error { return e.Err }

func (e *ProfileCreationError) Orphaned() bool { return e.CompensationErr != nil }

func validationf(stage Stage, field, format string, args ...any) *ValidationError {
	return &ValidationError{Stage: stage, Field: field, Message: fmt.Sprintf(format, args...)}
}
