package notify

import (
	"context"
	"testing"
	"time"

	"seva-health/internal/reminders"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantedPlatform(t *testing.T, sender Sender) *LocalPlatform {
	t.Helper()
	p := NewLocalPlatform(sender, LocalOptions{})
	perm, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	require.Equal(t, PermissionGranted, perm)
	return p
}

func TestScheduler_OneTriggerPerDay(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	s := NewScheduler(p, nil)
	ctx := context.Background()

	r := reminders.Reminder{ID: "r1", Name: "Aspirin", Time: "08:30", Days: []string{"Monday", "Wednesday", "Friday"}}
	n, err := s.Schedule(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	scheduled, err := p.Scheduled(ctx)
	require.NoError(t, err)
	require.Len(t, scheduled, 3)

	wantDays := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	for i, sc := range scheduled {
		assert.Equal(t, "r1", sc.Content.Data[DataReminderID])
		assert.Equal(t, "Time to take Aspirin", sc.Content.Body)
		assert.Equal(t, wantDays[i], sc.Trigger.Weekday)
		assert.Equal(t, 8, sc.Trigger.Hour)
		assert.Equal(t, 30, sc.Trigger.Minute)
		assert.True(t, sc.Trigger.Repeats)
	}
}

func TestScheduler_EmptyDaysRegistersNothing(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	s := NewScheduler(p, nil)
	ctx := context.Background()

	n, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "Aspirin", Time: "08:30", Days: []string{}})
	require.NoError(t, err)
	assert.Zero(t, n)

	scheduled, _ := p.Scheduled(ctx)
	assert.Empty(t, scheduled)
}

func TestScheduler_RejectsMalformedTime(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	s := NewScheduler(p, nil)
	ctx := context.Background()

	for _, bad := range []string{"24:00", "9:5", "12:60", "noon"} {
		n, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "A", Time: bad, Days: []string{"Monday"}})
		assert.ErrorIs(t, err, reminders.ErrInvalidTime, bad)
		assert.Zero(t, n)
	}

	_, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "A", Days: []string{"Monday"}})
	assert.ErrorIs(t, err, ErrMissingTime)

	scheduled, _ := p.Scheduled(ctx)
	assert.Empty(t, scheduled)
}

func TestScheduler_UnsupportedPlatformIsNoop(t *testing.T) {
	s := NewScheduler(Unsupported{}, nil)
	ctx := context.Background()

	n, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "A", Time: "bad", Days: []string{"Monday"}})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, s.Cancel(ctx, "r1"))

	perm, err := s.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)
}

func TestScheduler_CancelOnlyMatchingReminder(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	s := NewScheduler(p, nil)
	ctx := context.Background()

	_, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "A", Time: "08:00", Days: []string{"Monday", "Tuesday"}})
	require.NoError(t, err)
	_, err = s.Schedule(ctx, reminders.Reminder{ID: "r2", Name: "B", Time: "09:00", Days: []string{"Monday"}})
	require.NoError(t, err)

	require.NoError(t, s.Cancel(ctx, "r1"))

	scheduled, _ := p.Scheduled(ctx)
	require.Len(t, scheduled, 1)
	assert.Equal(t, "r2", scheduled[0].Content.Data[DataReminderID])

	require.NoError(t, s.Cancel(ctx, "unknown"))
}

func TestScheduler_PermissionDeniedFailsEachTrigger(t *testing.T) {
	p := NewLocalPlatform(NewLogSender(nil), LocalOptions{
		Prompt: func(context.Context) (bool, error) { return false, nil },
	})
	s := NewScheduler(p, nil)
	ctx := context.Background()

	perm, err := s.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)

	n, err := s.Schedule(ctx, reminders.Reminder{ID: "r1", Name: "A", Time: "08:00", Days: []string{"Monday", "Friday"}})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, n)
}

func TestScheduler_RequestPermissionAsksOnce(t *testing.T) {
	asked := 0
	p := NewLocalPlatform(NewLogSender(nil), LocalOptions{
		Prompt: func(context.Context) (bool, error) {
			asked++
			return true, nil
		},
	})
	s := NewScheduler(p, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		perm, err := s.RequestPermission(ctx)
		require.NoError(t, err)
		assert.Equal(t, PermissionGranted, perm)
	}
	assert.Equal(t, 1, asked)
}

func TestScheduler_UnknownDayFailsIndividually(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	s := NewScheduler(p, nil)

	n, err := s.Schedule(context.Background(), reminders.Reminder{ID: "r1", Name: "A", Time: "08:00", Days: []string{"Monday", "Someday"}})
	assert.ErrorIs(t, err, reminders.ErrUnknownDay)
	assert.Equal(t, 1, n)
}
