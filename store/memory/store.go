// Package memory is an in-process Store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pingchain/store"
	"pingchain/types"
)

type Store struct {
	mu        sync.RWMutex
	contacts  map[string]types.Contact
	messages  map[string]types.Message
	reminders map[string]types.Reminder
	memories  []types.MemoryEntry
}

func NewStore() *Store {
	return &Store{
		contacts:  make(map[string]types.Contact),
		messages:  make(map[string]types.Message),
		reminders: make(map[string]types.Reminder),
	}
}

var _ store.Store = (*Store)(nil)

// ─────────────────────────────────────────
// Contacts
// ─────────────────────────────────────────

func (s *Store) CreateContact(_ context.Context, c *types.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, exists := s.contacts[c.ID]; exists {
		return fmt.Errorf("contact %s already exists", c.ID)
	}
	s.contacts[c.ID] = *c
	return nil
}

func (s *Store) GetContact(_ context.Context, userID, id string) (types.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return types.Contact{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListContacts(_ context.Context, userID string) ([]types.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Contact{}
	for _, c := range s.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpdateContact(_ context.Context, c *types.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.contacts[c.ID]
	if !ok || existing.UserID != c.UserID {
		return store.ErrNotFound
	}
	s.contacts[c.ID] = *c
	return nil
}

func (s *Store) DeleteContact(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok || c.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.contacts, id)
	return nil
}

// ─────────────────────────────────────────
// Messages
// ─────────────────────────────────────────

func (s *Store) AppendMessage(_ context.Context, m *types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	s.messages[m.ID] = *m
	return nil
}

func (s *Store) ListMessagesByContact(_ context.Context, userID, contactID string, limit int) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Message{}
	for _, m := range s.messages {
		if m.UserID == userID && m.ContactID == contactID {
			out = append(out, m)
		}
	}
	sortMessages(out)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *Store) ListMessagesSince(_ context.Context, userID string, since time.Time) ([]types.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Message{}
	for _, m := range s.messages {
		if m.UserID == userID && !m.CreatedAt.Before(since) {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

func (s *Store) UpdateMessageStatus(_ context.Context, userID, id string, status types.MessageStatus) (types.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok || m.UserID != userID {
		return types.Message{}, store.ErrNotFound
	}
	m.Status = status
	s.messages[id] = m
	return m, nil
}

func (s *Store) HasExternalMessage(_ context.Context, userID, externalID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.messages {
		if m.UserID == userID && m.ExternalID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func sortMessages(msgs []types.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// ─────────────────────────────────────────
// Reminders
// ─────────────────────────────────────────

func (s *Store) CreatePendingReminder(_ context.Context, r types.Reminder) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reminders {
		if existing.Status == types.ReminderPending &&
			existing.UserID == r.UserID &&
			existing.ContactID == r.ContactID &&
			existing.Type == r.Type {
			return existing.ID, false, nil
		}
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.reminders[r.ID] = r
	return r.ID, true, nil
}

func (s *Store) GetReminder(_ context.Context, id string) (types.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reminders[id]
	if !ok {
		return types.Reminder{}, store.ErrNotFound
	}
	return r, nil
}

func (s *Store) ListReminders(_ context.Context, userID string, status types.ReminderStatus) ([]types.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Reminder{}
	for _, r := range s.reminders {
		if r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		out = append(out, r)
	}
	sortReminders(out)
	return out, nil
}

func (s *Store) ListDueReminders(_ context.Context, t time.Time) ([]types.Reminder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.Reminder{}
	for _, r := range s.reminders {
		if store.IsDue(r, t) {
			out = append(out, r)
		}
	}
	sortReminders(out)
	return out, nil
}

func (s *Store) UpdateReminder(_ context.Context, id string, patch types.ReminderPatch) (types.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return types.Reminder{}, store.ErrNotFound
	}
	patch.Apply(&r)
	s.reminders[id] = r
	return r, nil
}

func (s *Store) DeleteReminder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reminders, id)
	return nil
}

func (s *Store) ClearReminders(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, r := range s.reminders {
		if r.UserID == userID {
			delete(s.reminders, id)
			n++
		}
	}
	return n, nil
}

func sortReminders(rs []types.Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt.Equal(rs[j].CreatedAt) {
			return rs[i].ID < rs[j].ID
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}

// ─────────────────────────────────────────
// Memories
// ─────────────────────────────────────────

func (s *Store) AppendMemory(_ context.Context, e *types.MemoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.memories = append(s.memories, *e)
	return nil
}

// ListMemories returns the most recent entries first.
func (s *Store) ListMemories(_ context.Context, userID, contactID string, limit int) ([]types.MemoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []types.MemoryEntry{}
	for i := len(s.memories) - 1; i >= 0; i-- {
		e := s.memories[i]
		if e.UserID != userID || e.ContactID != contactID {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
