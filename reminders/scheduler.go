// Package reminders creates and tracks follow-up reminders for open conversations.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"pingchain/config"
	"pingchain/metrics"
	"pingchain/notify"
	"pingchain/store"
	"pingchain/types"
)

var (
	ErrInvalidInput      = errors.New("invalid reminder input")
	ErrInvalidTransition = errors.New("invalid reminder transition")
)

const (
	DefaultScheduleDelay = time.Hour

	OverdueHighAfter   = 72 * time.Hour
	OverdueMediumAfter = 48 * time.Hour
)

// Scheduler owns reminder creation and state changes. Reminders whose write failed are kept
// in a process-local map so they stay visible to this process.
type Scheduler struct {
	store    store.ReminderStore
	notifier notify.Notifier
	now      func() time.Time

	mu    sync.Mutex
	local map[string]types.Reminder
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(rs store.ReminderStore, n notify.Notifier, opts ...Option) *Scheduler {
	if n == nil {
		n = notify.LogNotifier{}
	}
	s := &Scheduler{
		store:    rs,
		notifier: n,
		now:      time.Now,
		local:    make(map[string]types.Reminder),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newReminderID(now time.Time, contactID string, t types.ReminderType) string {
	return fmt.Sprintf("%d_%s_%s_%s", now.UnixMilli(), uuid.NewString()[:8], contactID, t)
}

func validate(in types.CreateReminderRequest) error {
	if in.ContactID == "" {
		return fmt.Errorf("%w: contact_id is required", ErrInvalidInput)
	}
	if !in.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidInput, in.Type)
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, in.Priority)
	}
	return nil
}

// pendingLocal finds a local-only pending reminder with the same dedup key.
func (s *Scheduler) pendingLocal(userID, contactID string, t types.ReminderType) (string, bool) {
	for id, r := range s.local {
		if r.Status == types.ReminderPending && r.UserID == userID && r.ContactID == contactID && r.Type == t {
			return id, true
		}
	}
	return "", false
}

// CreateReminder returns the id of the pending reminder for (contact, type), creating it
// when none exists. Scheduled reminders without a future time are moved to now + 1h. A
// failed write is logged and the reminder is kept locally; the returned id may then not
// exist in the store.
func (s *Scheduler) CreateReminder(ctx context.Context, userID string, in types.CreateReminderRequest) (string, error) {
	if in.Priority == "" {
		in.Priority = types.PriorityMedium
	}
	if err := validate(in); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.pendingLocal(userID, in.ContactID, in.Type); ok {
		metrics.RemindersCreated.WithLabelValues(string(in.Type), "duplicate").Inc()
		return id, nil
	}

	now := s.now()
	r := types.Reminder{
		ID:          newReminderID(now, in.ContactID, in.Type),
		UserID:      userID,
		ContactID:   in.ContactID,
		ContactName: in.ContactName,
		Message:     in.Message,
		Type:        in.Type,
		Priority:    in.Priority,
		CreatedAt:   now,
		Status:      types.ReminderPending,
	}
	if in.ScheduledFor != nil {
		at := *in.ScheduledFor
		r.ScheduledFor = &at
	}
	if r.Type == types.ReminderScheduled && (r.ScheduledFor == nil || !r.ScheduledFor.After(now)) {
		at := now.Add(DefaultScheduleDelay)
		r.ScheduledFor = &at
	}

	id, created, err := s.store.CreatePendingReminder(ctx, r)
	if err != nil {
		config.Logger.WithFields(logrus.Fields{
			"reminder_id": r.ID,
			"contact_id":  r.ContactID,
			"type":        r.Type,
		}).Warn("Failed to persist reminder, keeping local copy: ", err)
		s.local[r.ID] = r
		metrics.RemindersCreated.WithLabelValues(string(r.Type), "local_only").Inc()
		return r.ID, nil
	}
	if !created {
		metrics.RemindersCreated.WithLabelValues(string(r.Type), "duplicate").Inc()
		return id, nil
	}

	metrics.RemindersCreated.WithLabelValues(string(r.Type), "created").Inc()
	return id, nil
}

// OverduePriority grades how long a contact has been waiting.
func OverduePriority(waiting time.Duration) types.Priority {
	switch {
	case waiting >= OverdueHighAfter:
		return types.PriorityHigh
	case waiting >= OverdueMediumAfter:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func (s *Scheduler) CreateOverdueReminder(ctx context.Context, userID, contactID, contactName string, waiting time.Duration) (string, error) {
	days := int(math.Floor(waiting.Hours() / 24))
	message := fmt.Sprintf("You haven't heard back from %s in a while. Time to follow up?", contactName)
	if days >= 1 {
		message = fmt.Sprintf("It's been %d day(s) since your last exchange with %s. Time to follow up?", days, contactName)
	}

	return s.CreateReminder(ctx, userID, types.CreateReminderRequest{
		ContactID:   contactID,
		ContactName: contactName,
		Message:     message,
		Type:        types.ReminderOverdue,
		Priority:    OverduePriority(waiting),
	})
}

// CreateQuestionReminder is always high priority.
func (s *Scheduler) CreateQuestionReminder(ctx context.Context, userID, contactID, contactName, question string) (string, error) {
	return s.CreateReminder(ctx, userID, types.CreateReminderRequest{
		ContactID:   contactID,
		ContactName: contactName,
		Message:     fmt.Sprintf("%s asked: %q", contactName, question),
		Type:        types.ReminderQuestion,
		Priority:    types.PriorityHigh,
	})
}

func (s *Scheduler) CreateScheduledReminder(ctx context.Context, userID, contactID, contactName, message string, at *time.Time) (string, error) {
	return s.CreateReminder(ctx, userID, types.CreateReminderRequest{
		ContactID:    contactID,
		ContactName:  contactName,
		Message:      message,
		Type:         types.ReminderScheduled,
		Priority:     types.PriorityMedium,
		ScheduledFor: at,
	})
}

// Get prefers the store and falls back to a local-only copy.
func (s *Scheduler) Get(ctx context.Context, id string) (types.Reminder, error) {
	r, err := s.store.GetReminder(ctx, id)
	if err == nil {
		return r, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.local[id]; ok {
		return r, nil
	}
	return types.Reminder{}, err
}

// List merges stored reminders with local-only copies for the user.
func (s *Scheduler) List(ctx context.Context, userID string, status types.ReminderStatus) ([]types.Reminder, error) {
	stored, err := s.store.ListReminders(ctx, userID, status)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.local {
		if r.UserID != userID || (status != "" && r.Status != status) {
			continue
		}
		stored = append(stored, r)
	}
	return stored, nil
}

// update passes the patch to the store. Local-only reminders are patched in place.
func (s *Scheduler) update(ctx context.Context, id string, patch types.ReminderPatch) (types.Reminder, error) {
	updated, err := s.store.UpdateReminder(ctx, id, patch)
	if err == nil {
		return updated, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.local[id]
	if !ok || !errors.Is(err, store.ErrNotFound) {
		return types.Reminder{}, err
	}
	patch.Apply(&r)
	s.local[id] = r
	return r, nil
}

func (s *Scheduler) DeleteReminder(ctx context.Context, id string) error {
	err := s.store.DeleteReminder(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.local[id]
	delete(s.local, id)
	if err != nil && !(ok && errors.Is(err, store.ErrNotFound)) {
		return err
	}
	return nil
}

// ClearAllReminders deletes every reminder of the user and returns how many were removed.
func (s *Scheduler) ClearAllReminders(ctx context.Context, userID string) (int, error) {
	n, err := s.store.ClearReminders(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.local {
		if r.UserID == userID {
			delete(s.local, id)
			n++
		}
	}
	return n, nil
}

func (s *Scheduler) requirePending(ctx context.Context, id string) (types.Reminder, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return types.Reminder{}, err
	}
	if r.Status != types.ReminderPending {
		return types.Reminder{}, fmt.Errorf("%w: reminder %s is %s", ErrInvalidTransition, id, r.Status)
	}
	return r, nil
}

// Edit changes the message, priority or schedule of a pending reminder. Status changes go
// through MarkSent, Snooze and Dismiss.
func (s *Scheduler) Edit(ctx context.Context, id string, req types.UpdateReminderRequest) (types.Reminder, error) {
	if req.Status != nil || req.SentAt != nil {
		return types.Reminder{}, fmt.Errorf("%w: status and sent_at cannot be edited", ErrInvalidInput)
	}
	patch := req.Patch()
	if patch.Empty() {
		return types.Reminder{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return types.Reminder{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *patch.Priority)
	}
	if _, err := s.requirePending(ctx, id); err != nil {
		return types.Reminder{}, err
	}
	return s.update(ctx, id, patch)
}

// MarkSent moves a pending reminder to sent.
func (s *Scheduler) MarkSent(ctx context.Context, id string) (types.Reminder, error) {
	if _, err := s.requirePending(ctx, id); err != nil {
		return types.Reminder{}, err
	}
	now := s.now()
	sent := types.ReminderSent
	return s.update(ctx, id, types.ReminderPatch{Status: &sent, SentAt: &now})
}

// Snooze reschedules a pending reminder; it stays pending.
func (s *Scheduler) Snooze(ctx context.Context, id string, until time.Time) (types.Reminder, error) {
	if !until.After(s.now()) {
		return types.Reminder{}, fmt.Errorf("%w: snooze time must be in the future", ErrInvalidInput)
	}
	if _, err := s.requirePending(ctx, id); err != nil {
		return types.Reminder{}, err
	}
	return s.update(ctx, id, types.ReminderPatch{ScheduledFor: &until})
}

// Dismiss removes a pending reminder. There is no dismissed status; the record is deleted.
func (s *Scheduler) Dismiss(ctx context.Context, id string) error {
	if _, err := s.requirePending(ctx, id); err != nil {
		return err
	}
	return s.DeleteReminder(ctx, id)
}

type ProcessResult struct {
	Processed   int
	ReminderIDs []string
}

// ProcessOpenLoops turns open loops into reminders: questions from a contact become question
// reminders, the user's own questions left unanswered for 48h or more become overdue
// reminders. names maps contact ids to display names.
func (s *Scheduler) ProcessOpenLoops(ctx context.Context, userID string, loops []types.OpenLoop, names map[string]string) (ProcessResult, error) {
	res := ProcessResult{ReminderIDs: []string{}}
	seen := map[string]bool{}
	now := s.now()

	for _, loop := range loops {
		if loop.ContactID == "" {
			continue
		}
		res.Processed++

		name := names[loop.ContactID]
		if name == "" {
			name = "your contact"
		}

		var id string
		var err error
		switch loop.AskedBy {
		case types.SenderContact:
			id, err = s.CreateQuestionReminder(ctx, userID, loop.ContactID, name, loop.Question)
		default:
			waiting := now.Sub(loop.CreatedAt)
			if waiting < OverdueMediumAfter {
				continue
			}
			id, err = s.CreateOverdueReminder(ctx, userID, loop.ContactID, name, waiting)
		}
		if err != nil {
			return res, err
		}
		if !seen[id] {
			seen[id] = true
			res.ReminderIDs = append(res.ReminderIDs, id)
		}
	}
	return res, nil
}

// DispatchDue notifies every scheduled reminder whose time has come and marks it sent.
// Notification failures are logged and the reminder stays pending for the next run.
func (s *Scheduler) DispatchDue(ctx context.Context) (int, error) {
	now := s.now()
	due, err := s.store.ListDueReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	for _, r := range s.local {
		if store.IsDue(r, now) {
			due = append(due, r)
		}
	}
	s.mu.Unlock()

	sent := 0
	for _, r := range due {
		if err := s.notifier.Notify(ctx, r); err != nil {
			config.Logger.WithField("reminder_id", r.ID).Warn("Failed to send reminder notification: ", err)
			metrics.RemindersDispatched.WithLabelValues("failed").Inc()
			continue
		}
		if _, err := s.MarkSent(ctx, r.ID); err != nil {
			config.Logger.WithField("reminder_id", r.ID).Warn("Failed to mark reminder as sent: ", err)
			metrics.RemindersDispatched.WithLabelValues("failed").Inc()
			continue
		}
		metrics.RemindersDispatched.WithLabelValues("sent").Inc()
		sent++
	}
	return sent, nil
}
