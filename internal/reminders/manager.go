package reminders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"seva-health/internal/logging"

	"go.uber.org/zap"
)

// Scheduler registers and cancels notification triggers for a reminder.
type Scheduler interface {
	Schedule(ctx context.Context, r Reminder) (int, error)
	Cancel(ctx context.Context, reminderID string) error
}

// Manager runs the add-reminder and clear-all flows on top of the store.
type Manager struct {
	store *Store
	sched Scheduler
	log   *zap.Logger
	now   func() time.Time
}

func NewManager(store *Store, sched Scheduler, logger *zap.Logger) *Manager {
	return &Manager{
		store: store,
		sched: sched,
		log:   logging.OrNop(logger).Named("reminders"),
		now:   time.Now,
	}
}

// Add validates in, appends the reminder to the stored list and schedules it.
// When scheduling fails the reminder stays saved and the error is returned
// alongside it.
func (m *Manager) Add(ctx context.Context, in Input) (Reminder, error) {
	r, err := New(in, m.now())
	if err != nil {
		return Reminder{}, err
	}

	current := m.store.Load(ctx).Reminders
	r.ID = uniqueID(r.ID, current)

	if err := m.store.Save(ctx, append(current, r)); err != nil {
		return Reminder{}, err
	}

	if len(r.Days) == 0 {
		m.log.Warn("reminder has no days selected and will never fire", zap.String("reminder_id", r.ID))
	}

	n, err := m.sched.Schedule(ctx, r)
	if err != nil {
		return r, fmt.Errorf("schedule reminder %s: %w", r.ID, err)
	}
	m.log.Info("reminder added", zap.String("reminder_id", r.ID), zap.Int("triggers", n))
	return r, nil
}

func (m *Manager) List(ctx context.Context) LoadResult {
	return m.store.Load(ctx)
}

// ClearAll cancels the triggers of every stored reminder, then deletes the collection.
func (m *Manager) ClearAll(ctx context.Context) error {
	var errs []error
	for _, r := range m.store.Load(ctx).Reminders {
		if err := m.sched.Cancel(ctx, r.ID); err != nil {
			m.log.Warn("cancel reminder triggers failed", zap.String("reminder_id", r.ID), zap.Error(err))
			errs = append(errs, err)
		}
	}
	if err := m.store.Clear(ctx); err != nil {
		return err
	}
	return errors.Join(errs...)
}

// ScheduleAll registers triggers for every stored reminder and returns the
// number of triggers created.
func (m *Manager) ScheduleAll(ctx context.Context) (int, error) {
	total := 0
	var errs []error
	for _, r := range m.store.Load(ctx).Reminders {
		n, err := m.sched.Schedule(ctx, r)
		total += n
		if err != nil {
			errs = append(errs, fmt.Errorf("reminder %s: %w", r.ID, err))
		}
	}
	return total, errors.Join(errs...)
}

func uniqueID(id string, existing []Reminder) string {
	taken := make(map[string]bool, len(existing))
	for _, r := range existing {
		taken[r.ID] = true
	}
	n, err := strconv.ParseInt(id, 10, 64)
	for taken[id] {
		if err != nil {
			id += "-1"
			continue
		}
		n++
		id = strconv.FormatInt(n, 10)
	}
	return id
}
