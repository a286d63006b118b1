package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"seva-health/internal/kv"
	"seva-health/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu  sync.Mutex
	got []Content
}

func (r *recordingSender) Publish(_ context.Context, c Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, c)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.got)
}

func TestLocalPlatform_FireDueTriggersOncePerMinute(t *testing.T) {
	sender := &recordingSender{}
	p := grantedPlatform(t, sender)
	ctx := context.Background()

	_, err := p.Schedule(ctx, Request{
		Content: Content{Title: "Medicine Reminder", Body: "Time to take A", Data: map[string]string{DataReminderID: "r1"}},
		Trigger: Trigger{Weekday: time.Monday, Hour: 8, Minute: 30, Repeats: true},
	})
	require.NoError(t, err)

	// 2024-01-01 is a Monday
	monday := time.Date(2024, 1, 1, 8, 30, 5, 0, time.Local)
	assert.Equal(t, 1, p.Fire(ctx, monday))
	assert.Equal(t, 0, p.Fire(ctx, monday.Add(20*time.Second)))
	assert.Equal(t, 0, p.Fire(ctx, monday.Add(time.Minute)))
	assert.Equal(t, 0, p.Fire(ctx, monday.AddDate(0, 0, 1)))
	assert.Equal(t, 1, p.Fire(ctx, monday.AddDate(0, 0, 7)))
	assert.Equal(t, 2, sender.count())

	scheduled, _ := p.Scheduled(ctx)
	assert.Len(t, scheduled, 1)
}

func TestLocalPlatform_NonRepeatingTriggerRemovedAfterFiring(t *testing.T) {
	sender := &recordingSender{}
	p := grantedPlatform(t, sender)
	ctx := context.Background()

	_, err := p.Schedule(ctx, Request{Trigger: Trigger{Weekday: time.Monday, Hour: 8, Minute: 0}})
	require.NoError(t, err)

	assert.Equal(t, 1, p.Fire(ctx, time.Date(2024, 1, 1, 8, 0, 0, 0, time.Local)))
	scheduled, _ := p.Scheduled(ctx)
	assert.Empty(t, scheduled)
}

func TestLocalPlatform_ScheduleRequiresPermission(t *testing.T) {
	p := NewLocalPlatform(NewLogSender(nil), LocalOptions{})

	_, err := p.Schedule(context.Background(), Request{Trigger: Trigger{Weekday: time.Monday, Hour: 8}})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestLocalPlatform_RejectsOutOfRangeTrigger(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))

	_, err := p.Schedule(context.Background(), Request{Trigger: Trigger{Weekday: time.Monday, Hour: 24}})
	assert.Error(t, err)
}

func TestLocalPlatform_PermissionPersisted(t *testing.T) {
	db, err := kv.OpenInMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	first := NewLocalPlatform(NewLogSender(nil), LocalOptions{
		Store:  db,
		Prompt: func(context.Context) (bool, error) { return false, nil },
	})
	perm, err := first.RequestPermission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)

	second := NewLocalPlatform(NewLogSender(nil), LocalOptions{Store: db})
	perm, err = second.Permission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDenied, perm)
}

func TestLocalPlatform_RunStopsOnCancel(t *testing.T) {
	p := grantedPlatform(t, NewLogSender(nil))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 5*time.Millisecond) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, e mailer.Email) (string, error) {
	f.sent = append(f.sent, e)
	return "id", f.err
}

func TestMailSender_Publish(t *testing.T) {
	m := &fakeMailer{}
	s := NewMailSender(m, "patient@example.com")

	require.NoError(t, s.Publish(context.Background(), Content{Title: "Medicine Reminder", Body: "Time to take <Aspirin>"}))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "patient@example.com", m.sent[0].To)
	assert.Equal(t, "Medicine Reminder", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].HTML, "&lt;Aspirin&gt;")
}

func TestMultiSender_PublishesToAll(t *testing.T) {
	a := &recordingSender{}
	failing := NewMailSender(&fakeMailer{err: errors.New("smtp down")}, "x@example.com")
	b := &recordingSender{}

	err := MultiSender{a, failing, b}.Publish(context.Background(), Content{Title: "t"})
	assert.Error(t, err)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}
