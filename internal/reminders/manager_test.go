package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	scheduled []Reminder
	cancelled []string
	err       error
}

func (f *fakeScheduler) Schedule(_ context.Context, r Reminder) (int, error) {
	f.scheduled = append(f.scheduled, r)
	if f.err != nil {
		return 0, f.err
	}
	return len(r.Days), nil
}

func (f *fakeScheduler) Cancel(_ context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

func TestNew_Validation(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	r, err := New(Input{Name: " Aspirin ", Time: "08:05", Days: []string{"mon", "Monday", "FRI"}}, now)
	require.NoError(t, err)
	assert.Equal(t, "1700000000123", r.ID)
	assert.Equal(t, "Aspirin", r.Name)
	assert.Equal(t, []string{"Monday", "Friday"}, r.Days)

	_, err = New(Input{Name: "", Time: "08:00"}, now)
	assert.ErrorIs(t, err, ErrNameRequired)

	for _, bad := range []string{"24:00", "9:5", "08:60", "0800", ""} {
		_, err = New(Input{Name: "A", Time: bad}, now)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}

	_, err = New(Input{Name: "A", Time: "08:00", Days: []string{"Funday"}}, now)
	assert.ErrorIs(t, err, ErrUnknownDay)
}

func TestManager_AddAppendsAndSchedules(t *testing.T) {
	store, _ := newTestStore(t)
	sched := &fakeScheduler{}
	m := NewManager(store, sched, nil)
	m.now = func() time.Time { return time.UnixMilli(1000) }
	ctx := context.Background()

	first, err := m.Add(ctx, Input{Name: "Aspirin", Time: "08:00", Days: []string{"Monday"}})
	require.NoError(t, err)
	second, err := m.Add(ctx, Input{Name: "Metformin", Time: "20:00", Days: []string{"Tuesday"}})
	require.NoError(t, err)

	// same clock value, ids must still be unique
	assert.Equal(t, "1000", first.ID)
	assert.Equal(t, "1001", second.ID)

	res := m.List(ctx)
	require.Len(t, res.Reminders, 2)
	assert.Equal(t, "Aspirin", res.Reminders[0].Name)
	assert.Equal(t, "Metformin", res.Reminders[1].Name)
	assert.Len(t, sched.scheduled, 2)
}

func TestManager_AddWithNoDaysIsStored(t *testing.T) {
	store, _ := newTestStore(t)
	sched := &fakeScheduler{}
	m := NewManager(store, sched, nil)
	ctx := context.Background()

	r, err := m.Add(ctx, Input{Name: "Aspirin", Time: "08:00"})
	require.NoError(t, err)
	assert.Empty(t, r.Days)
	assert.Len(t, m.List(ctx).Reminders, 1)
}

func TestManager_AddKeepsReminderWhenSchedulingFails(t *testing.T) {
	store, _ := newTestStore(t)
	sched := &fakeScheduler{err: errors.New("permission denied")}
	m := NewManager(store, sched, nil)
	ctx := context.Background()

	r, err := m.Add(ctx, Input{Name: "Aspirin", Time: "08:00", Days: []string{"Monday"}})
	require.Error(t, err)
	assert.NotEmpty(t, r.ID)
	assert.Len(t, m.List(ctx).Reminders, 1)
}

func TestManager_ClearAllCancelsEveryReminder(t *testing.T) {
	store, _ := newTestStore(t)
	sched := &fakeScheduler{}
	m := NewManager(store, sched, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Reminder{
		{ID: "1", Name: "A", Time: "08:00", Days: []string{"Monday"}},
		{ID: "2", Name: "B", Time: "09:00", Days: []string{"Friday"}},
	}))

	require.NoError(t, m.ClearAll(ctx))
	assert.Equal(t, []string{"1", "2"}, sched.cancelled)
	assert.Empty(t, m.List(ctx).Reminders)
}

func TestManager_ScheduleAll(t *testing.T) {
	store, _ := newTestStore(t)
	sched := &fakeScheduler{}
	m := NewManager(store, sched, nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, []Reminder{
		{ID: "1", Name: "A", Time: "08:00", Days: []string{"Monday", "Tuesday"}},
		{ID: "2", Name: "B", Time: "09:00", Days: []string{}},
	}))

	n, err := m.ScheduleAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
