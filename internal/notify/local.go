package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"seva-health/internal/kv"
	"seva-health/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PermissionKey stores the user's notification decision in the local KV store.
const PermissionKey = "com.seva:notification_permission"

type LocalOptions struct {
	// Store persists the permission decision. Optional.
	Store kv.Store
	// Prompt asks the user for permission. A nil Prompt grants it.
	Prompt func(ctx context.Context) (bool, error)
	Logger *zap.Logger
}

type localEntry struct {
	Scheduled
	lastFired time.Time
}

// LocalPlatform keeps triggers in process memory and fires them from Run.
type LocalPlatform struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	order   []string

	permission Permission
	store      kv.Store
	prompt     func(ctx context.Context) (bool, error)

	sender Sender
	log    *zap.Logger
	now    func() time.Time
}

func NewLocalPlatform(sender Sender, opts LocalOptions) *LocalPlatform {
	return &LocalPlatform{
		entries:    map[string]*localEntry{},
		permission: PermissionUndetermined,
		store:      opts.Store,
		prompt:     opts.Prompt,
		sender:     sender,
		log:        logging.OrNop(opts.Logger).Named("notify"),
		now:        time.Now,
	}
}

func (p *LocalPlatform) Supported() bool { return true }

func (p *LocalPlatform) Permission(ctx context.Context) (Permission, error) {
	p.mu.Lock()
	current := p.permission
	p.mu.Unlock()
	if current != PermissionUndetermined || p.store == nil {
		return current, nil
	}

	raw, ok, err := p.store.Get(ctx, PermissionKey)
	if err != nil {
		return PermissionUndetermined, err
	}
	if !ok {
		return PermissionUndetermined, nil
	}
	perm := Permission(raw)
	if perm != PermissionGranted && perm != PermissionDenied {
		return PermissionUndetermined, nil
	}

	p.mu.Lock()
	p.permission = perm
	p.mu.Unlock()
	return perm, nil
}

func (p *LocalPlatform) RequestPermission(ctx context.Context) (Permission, error) {
	granted := true
	if p.prompt != nil {
		ok, err := p.prompt(ctx)
		if err != nil {
			return PermissionUndetermined, err
		}
		granted = ok
	}

	perm := PermissionDenied
	if granted {
		perm = PermissionGranted
	}

	p.mu.Lock()
	p.permission = perm
	p.mu.Unlock()

	if p.store != nil {
		if err := p.store.Set(ctx, PermissionKey, []byte(perm)); err != nil {
			p.log.Warn("persist notification permission failed", zap.Error(err))
		}
	}
	return perm, nil
}

func (p *LocalPlatform) Schedule(ctx context.Context, req Request) (string, error) {
	perm, err := p.Permission(ctx)
	if err != nil {
		return "", err
	}
	if perm != PermissionGranted {
		return "", ErrPermissionDenied
	}

	t := req.Trigger
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Weekday < time.Sunday || t.Weekday > time.Saturday {
		return "", fmt.Errorf("invalid trigger %s %02d:%02d", t.Weekday, t.Hour, t.Minute)
	}

	id := uuid.NewString()
	p.mu.Lock()
	p.entries[id] = &localEntry{Scheduled: Scheduled{ID: id, Request: req}}
	p.order = append(p.order, id)
	p.mu.Unlock()
	return id, nil
}

func (p *LocalPlatform) Scheduled(_ context.Context) ([]Scheduled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Scheduled, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.entries[id].Scheduled)
	}
	return out, nil
}

func (p *LocalPlatform) Cancel(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(id)
	return nil
}

func (p *LocalPlatform) removeLocked(id string) {
	if _, ok := p.entries[id]; !ok {
		return
	}
	delete(p.entries, id)
	for i, v := range p.order {
		if v == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Fire delivers every trigger due at now and returns how many fired. A trigger
// fires at most once per minute; non-repeating triggers are removed after firing.
func (p *LocalPlatform) Fire(ctx context.Context, now time.Time) int {
	minute := now.Truncate(time.Minute)

	var due []Scheduled
	p.mu.Lock()
	for _, id := range p.order {
		e := p.entries[id]
		t := e.Trigger
		if t.Weekday != now.Weekday() || t.Hour != now.Hour() || t.Minute != now.Minute() {
			continue
		}
		if e.lastFired.Equal(minute) {
			continue
		}
		e.lastFired = minute
		due = append(due, e.Scheduled)
	}
	for _, s := range due {
		if !s.Trigger.Repeats {
			p.removeLocked(s.ID)
		}
	}
	p.mu.Unlock()

	for _, s := range due {
		if err := p.sender.Publish(ctx, s.Content); err != nil {
			p.log.Error("deliver notification failed",
				zap.String("trigger_id", s.ID),
				zap.String("reminder_id", s.Content.Data[DataReminderID]),
				zap.Error(err),
			)
		}
	}
	return len(due)
}

// Run fires due triggers on every tick until ctx is done.
func (p *LocalPlatform) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 15 * time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	p.Fire(ctx, p.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Fire(ctx, p.now())
		}
	}
}
