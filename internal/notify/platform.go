package notify

import (
	"context"
	"errors"
	"time"
)

var ErrPermissionDenied = errors.New("notification permission not granted")

type Permission string

const (
	PermissionUndetermined Permission = "undetermined"
	PermissionGranted      Permission = "granted"
	PermissionDenied       Permission = "denied"
)

// DataReminderID is the payload key carrying the owning reminder's id.
const DataReminderID = "reminderId"

type Content struct {
	Title string
	Body  string
	Data  map[string]string
}

// Trigger fires weekly on Weekday at Hour:Minute local time.
type Trigger struct {
	Weekday time.Weekday
	Hour    int
	Minute  int
	Repeats bool
}

type Request struct {
	Content Content
	Trigger Trigger
}

type Scheduled struct {
	ID string
	Request
}

// Platform is the device notification facility.
type Platform interface {
	Supported() bool
	Permission(ctx context.Context) (Permission, error)
	RequestPermission(ctx context.Context) (Permission, error)
	Schedule(ctx context.Context, req Request) (id string, err error)
	Scheduled(ctx context.Context) ([]Scheduled, error)
	Cancel(ctx context.Context, id string) error
}

// Unsupported is a Platform without notification support; every call is a no-op.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Permission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Unsupported) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}

func (Unsupported) Schedule(context.Context, Request) (string, error) { return "", nil }

func (Unsupported) Scheduled(context.Context) ([]Scheduled, error) { return nil, nil }

func (Unsupported) Cancel(context.Context, string) error { return nil }
