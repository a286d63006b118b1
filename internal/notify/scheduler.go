package notify

import (
	"context"
	"errors"
	"fmt"

	"seva-health/internal/logging"
	"seva-health/internal/reminders"

	"go.uber.org/zap"
)

var ErrMissingTime = errors.New("reminder time is missing")

// Scheduler maps reminders to weekly platform triggers, one per selected day.
type Scheduler struct {
	platform Platform
	log      *zap.Logger
}

func NewScheduler(platform Platform, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		platform: platform,
		log:      logging.OrNop(logger).Named("scheduler"),
	}
}

// Schedule registers one repeating trigger per entry in r.Days and returns the
// number registered. An empty day set registers nothing and is not an error.
// Individual trigger failures do not stop the remaining days.
func (s *Scheduler) Schedule(ctx context.Context, r reminders.Reminder) (int, error) {
	if !s.platform.Supported() {
		s.log.Info("notifications are not supported on this platform")
		return 0, nil
	}
	if r.Time == "" {
		s.log.Error("reminder has no time", zap.String("reminder_id", r.ID))
		return 0, ErrMissingTime
	}
	hour, minute, err := reminders.ParseTime(r.Time)
	if err != nil {
		s.log.Error("invalid reminder time", zap.String("reminder_id", r.ID), zap.String("time", r.Time))
		return 0, err
	}

	n := 0
	var errs []error
	for _, day := range r.Days {
		wd, ok := reminders.ParseDay(day)
		if !ok {
			s.log.Warn("skipping unknown day", zap.String("reminder_id", r.ID), zap.String("day", day))
			errs = append(errs, fmt.Errorf("%w: %q", reminders.ErrUnknownDay, day))
			continue
		}

		_, err := s.platform.Schedule(ctx, Request{
			Content: Content{
				Title: "Medicine Reminder",
				Body:  "Time to take " + r.Name,
				Data:  map[string]string{DataReminderID: r.ID},
			},
			Trigger: Trigger{Weekday: wd, Hour: hour, Minute: minute, Repeats: true},
		})
		if err != nil {
			s.log.Warn("schedule trigger failed", zap.String("reminder_id", r.ID), zap.String("day", day), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Cancel removes every scheduled trigger whose payload carries reminderID.
func (s *Scheduler) Cancel(ctx context.Context, reminderID string) error {
	if !s.platform.Supported() {
		return nil
	}
	scheduled, err := s.platform.Scheduled(ctx)
	if err != nil {
		return fmt.Errorf("list scheduled notifications: %w", err)
	}

	var errs []error
	for _, n := range scheduled {
		if n.Content.Data[DataReminderID] != reminderID {
			continue
		}
		if err := s.platform.Cancel(ctx, n.ID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RequestPermission asks the platform once; an earlier decision is returned as is.
// Denial is not an error: scheduling simply stops producing triggers.
func (s *Scheduler) RequestPermission(ctx context.Context) (Permission, error) {
	if !s.platform.Supported() {
		return PermissionDenied, nil
	}

	perm, err := s.platform.Permission(ctx)
	if err != nil {
		return PermissionUndetermined, err
	}
	if perm == PermissionUndetermined {
		perm, err = s.platform.RequestPermission(ctx)
		if err != nil {
			return PermissionUndetermined, err
		}
	}
	if perm != PermissionGranted {
		s.log.Warn("notification permission denied, medicine reminders will not fire")
	}
	return perm, nil
}
