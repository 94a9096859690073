package reminders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchain/store"
	"pingchain/store/memory"
	"pingchain/types"
)

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestScheduler(rs store.ReminderStore, n *recordingNotifier) *Scheduler {
	if n == nil {
		n = &recordingNotifier{}
	}
	return NewScheduler(rs, n, WithClock(func() time.Time { return now }))
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, r types.Reminder) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, r.ID)
	return nil
}

// failingStore rejects every write.
type failingStore struct {
	*memory.Store
}

func (failingStore) CreatePendingReminder(context.Context, types.Reminder) (string, bool, error) {
	return "", false, errors.New("firestore unavailable")
}

func (failingStore) UpdateReminder(context.Context, string, types.ReminderPatch) (types.Reminder, error) {
	return types.Reminder{}, store.ErrNotFound
}

func (failingStore) DeleteReminder(context.Context, string) error {
	return store.ErrNotFound
}

func (failingStore) GetReminder(context.Context, string) (types.Reminder, error) {
	return types.Reminder{}, store.ErrNotFound
}

func TestCreateReminderDeduplicatesPending(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	s := newTestScheduler(ms, nil)

	in := types.CreateReminderRequest{ContactID: "c1", ContactName: "Dana", Message: "reply", Type: types.ReminderQuestion, Priority: types.PriorityHigh}
	first, err := s.CreateReminder(ctx, "u1", in)
	require.NoError(t, err)
	second, err := s.CreateReminder(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := ms.ListReminders(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	// a different type is a different reminder
	in.Type = types.ReminderOverdue
	third, err := s.CreateReminder(ctx, "u1", in)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestCreateReminderAfterSentCreatesNew(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(memory.NewStore(), nil)

	first, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)
	_, err = s.MarkSent(ctx, first)
	require.NoError(t, err)

	second, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestReminderIDFormat(t *testing.T) {
	s := newTestScheduler(memory.NewStore(), nil)
	id, err := s.CreateQuestionReminder(context.Background(), "u1", "c9", "Sam", "ok?")
	require.NoError(t, err)
	assert.Regexp(t, `^\d+_[0-9a-f]{8}_c9_question$`, id)
}

func TestScheduledReminderDefaultsToOneHour(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	s := newTestScheduler(ms, nil)

	past := now.Add(-time.Hour)
	id, err := s.CreateScheduledReminder(ctx, "u1", "c1", "Dana", "check in", &past)
	require.NoError(t, err)
	r, err := ms.GetReminder(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, r.ScheduledFor)
	assert.Equal(t, now.Add(time.Hour), *r.ScheduledFor)

	id, err = s.CreateScheduledReminder(ctx, "u1", "c2", "Sam", "check in", nil)
	require.NoError(t, err)
	r, err = ms.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), *r.ScheduledFor)

	future := now.Add(5 * time.Hour)
	id, err = s.CreateScheduledReminder(ctx, "u1", "c3", "Lee", "check in", &future)
	require.NoError(t, err)
	r, err = ms.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, future, *r.ScheduledFor)
}

func TestCreateReminderValidation(t *testing.T) {
	s := newTestScheduler(memory.NewStore(), nil)
	_, err := s.CreateReminder(context.Background(), "u1", types.CreateReminderRequest{Type: types.ReminderQuestion})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.CreateReminder(context.Background(), "u1", types.CreateReminderRequest{ContactID: "c1", Type: "later"})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestOverduePriority(t *testing.T) {
	assert.Equal(t, types.PriorityLow, OverduePriority(47*time.Hour))
	assert.Equal(t, types.PriorityMedium, OverduePriority(48*time.Hour))
	assert.Equal(t, types.PriorityMedium, OverduePriority(71*time.Hour))
	assert.Equal(t, types.PriorityHigh, OverduePriority(72*time.Hour))
}

func TestPersistenceFailureKeepsLocalCopy(t *testing.T) {
	ctx := context.Background()
	fs := failingStore{memory.NewStore()}
	s := newTestScheduler(fs, nil)

	id, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	list, err := s.List(ctx, "u1", types.ReminderPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	sent, err := s.MarkSent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.ReminderSent, sent.Status)

	require.NoError(t, s.DeleteReminder(ctx, id))
	list, err = s.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStateTransitions(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	s := newTestScheduler(ms, nil)

	id, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)

	_, err = s.Snooze(ctx, id, now.Add(-time.Minute))
	require.ErrorIs(t, err, ErrInvalidInput)

	snoozed, err := s.Snooze(ctx, id, now.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, types.ReminderPending, snoozed.Status)
	assert.Equal(t, now.Add(3*time.Hour), *snoozed.ScheduledFor)

	sent, err := s.MarkSent(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.ReminderSent, sent.Status)
	require.NotNil(t, sent.SentAt)

	_, err = s.MarkSent(ctx, id)
	require.ErrorIs(t, err, ErrInvalidTransition)
	require.ErrorIs(t, s.Dismiss(ctx, id), ErrInvalidTransition)

	other, err := s.CreateOverdueReminder(ctx, "u1", "c2", "Sam", 80*time.Hour)
	require.NoError(t, err)
	require.NoError(t, s.Dismiss(ctx, other))
	_, err = ms.GetReminder(ctx, other)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEditPendingOnly(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	s := newTestScheduler(ms, nil)

	id, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "lunch?")
	require.NoError(t, err)

	low := types.PriorityLow
	edited, err := s.Edit(ctx, id, types.UpdateReminderRequest{Priority: &low})
	require.NoError(t, err)
	assert.Equal(t, types.PriorityLow, edited.Priority)

	sent := types.ReminderSent
	_, err = s.Edit(ctx, id, types.UpdateReminderRequest{Status: &sent})
	require.ErrorIs(t, err, ErrInvalidInput)
	at := now
	_, err = s.Edit(ctx, id, types.UpdateReminderRequest{SentAt: &at})
	require.ErrorIs(t, err, ErrInvalidInput)
	bad := types.Priority("urgent")
	_, err = s.Edit(ctx, id, types.UpdateReminderRequest{Priority: &bad})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.MarkSent(ctx, id)
	require.NoError(t, err)
	msg := "too late"
	_, err = s.Edit(ctx, id, types.UpdateReminderRequest{Message: &msg})
	require.ErrorIs(t, err, ErrInvalidTransition)

	r, err := ms.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.ReminderSent, r.Status)
	assert.Equal(t, "Dana asked: \"lunch?\"", r.Message)
}

func TestClearAllReminders(t *testing.T) {
	ctx := context.Background()
	s := newTestScheduler(memory.NewStore(), nil)

	_, err := s.CreateQuestionReminder(ctx, "u1", "c1", "Dana", "?")
	require.NoError(t, err)
	_, err = s.CreateQuestionReminder(ctx, "u1", "c2", "Sam", "?")
	require.NoError(t, err)
	_, err = s.CreateQuestionReminder(ctx, "u2", "c3", "Lee", "?")
	require.NoError(t, err)

	n, err := s.ClearAllReminders(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	left, err := s.List(ctx, "u2", "")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestProcessOpenLoops(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	s := newTestScheduler(ms, nil)

	loops := []types.OpenLoop{
		{ContactID: "c1", Question: "Can we meet tomorrow?", AskedBy: types.SenderContact, CreatedAt: now.Add(-50 * time.Hour)},
		{ContactID: "c1", Question: "And lunch?", AskedBy: types.SenderContact, CreatedAt: now.Add(-49 * time.Hour)},
		{ContactID: "c2", Question: "Did you get my invoice?", AskedBy: types.SenderUser, CreatedAt: now.Add(-80 * time.Hour)},
		{ContactID: "c3", Question: "Coffee?", AskedBy: types.SenderUser, CreatedAt: now.Add(-2 * time.Hour)},
		{Question: "orphan?", AskedBy: types.SenderContact},
	}

	res, err := s.ProcessOpenLoops(ctx, "u1", loops, map[string]string{"c1": "Dana", "c2": "Sam"})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Processed)
	assert.Len(t, res.ReminderIDs, 2)

	pending, err := ms.ListReminders(ctx, "u1", types.ReminderPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	byType := map[types.ReminderType]types.Reminder{}
	for _, r := range pending {
		byType[r.Type] = r
	}
	assert.Equal(t, types.PriorityHigh, byType[types.ReminderQuestion].Priority)
	assert.Equal(t, "Dana", byType[types.ReminderQuestion].ContactName)
	assert.Equal(t, types.PriorityHigh, byType[types.ReminderOverdue].Priority)
	assert.Contains(t, byType[types.ReminderOverdue].Message, "3 day(s)")
}

func TestDispatchDue(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	n := &recordingNotifier{}
	s := newTestScheduler(ms, n)

	due, err := s.CreateScheduledReminder(ctx, "u1", "c1", "Dana", "ping Dana", nil)
	require.NoError(t, err)
	_, err = s.CreateQuestionReminder(ctx, "u1", "c2", "Sam", "?")
	require.NoError(t, err)

	// nothing is due yet
	sent, err := s.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	later := NewScheduler(ms, n, WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
	sent, err = later.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{due}, n.sent)

	r, err := ms.GetReminder(ctx, due)
	require.NoError(t, err)
	assert.Equal(t, types.ReminderSent, r.Status)
}

func TestDispatchDueKeepsPendingOnNotifyFailure(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	id, _, err := ms.CreatePendingReminder(ctx, types.Reminder{
		ID: "r1", UserID: "u1", ContactID: "c1", Type: types.ReminderScheduled,
		Status: types.ReminderPending, ScheduledFor: ptr(now.Add(-time.Minute)),
	})
	require.NoError(t, err)

	s := newTestScheduler(ms, &recordingNotifier{err: errors.New("smtp down")})
	sent, err := s.DispatchDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	r, err := ms.GetReminder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, types.ReminderPending, r.Status)
}

func ptr[T any](v T) *T { return &v }
