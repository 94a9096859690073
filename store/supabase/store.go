// Package supabase persists the application data in Supabase tables through PostgREST.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"pingchain/config"
	"pingchain/store"
	"pingchain/types"
)

// Store talks to Supabase with the service key. Every query is filtered by user_id
// explicitly since row-level security does not apply to the service role.
type Store struct {
	client *supabase.Client
}

var _ store.Store = (*Store)(nil)

func NewStore(apiURL, apiKey string) (*Store, error) {
	if apiURL == "" || apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL or SUPABASE_KEY is missing")
	}

	client, err := supabase.NewClient(apiURL, apiKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}
	return &Store{client: client}, nil
}

func decodeRows[T any](resp []byte) ([]T, error) {
	var rows []T
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rows: %w", err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

func firstRow[T any](resp []byte) (T, error) {
	var zero T
	rows, err := decodeRows[T](resp)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, store.ErrNotFound
	}
	return rows[0], nil
}

// ─────────────────────────────────────────
// Contacts
// ─────────────────────────────────────────

func (s *Store) CreateContact(_ context.Context, c *types.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, _, err := s.client.From(config.CollectionContacts).Insert(c, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

func (s *Store) GetContact(_ context.Context, userID, id string) (types.Contact, error) {
	resp, _, err := s.client.From(config.CollectionContacts).
		Select("*", "", false).
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return types.Contact{}, fmt.Errorf("failed to fetch contact: %w", err)
	}
	return firstRow[types.Contact](resp)
}

func (s *Store) ListContacts(_ context.Context, userID string) ([]types.Contact, error) {
	resp, _, err := s.client.From(config.CollectionContacts).
		Select("*", "", false).
		Eq("user_id", userID).
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	return decodeRows[types.Contact](resp)
}

func (s *Store) UpdateContact(_ context.Context, c *types.Contact) error {
	updates := map[string]interface{}{
		"name":       c.Name,
		"email":      c.Email,
		"platform":   c.Platform,
		"handle":     c.Handle,
		"notes":      c.Notes,
		"updated_at": c.UpdatedAt,
	}
	resp, _, err := s.client.From(config.CollectionContacts).
		Update(updates, "representation", "").
		Eq("id", c.ID).
		Eq("user_id", c.UserID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	_, err = firstRow[types.Contact](resp)
	return err
}

func (s *Store) DeleteContact(_ context.Context, userID, id string) error {
	resp, _, err := s.client.From(config.CollectionContacts).
		Delete("representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	_, err = firstRow[types.Contact](resp)
	return err
}

// ─────────────────────────────────────────
// Messages
// ─────────────────────────────────────────

func (s *Store) AppendMessage(_ context.Context, m *types.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, _, err := s.client.From(config.CollectionMessages).Insert(m, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (s *Store) ListMessagesByContact(_ context.Context, userID, contactID string, limit int) ([]types.Message, error) {
	q := s.client.From(config.CollectionMessages).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("contact_id", contactID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}

	resp, _, err := q.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	msgs, err := decodeRows[types.Message](resp)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *Store) ListMessagesSince(_ context.Context, userID string, since time.Time) ([]types.Message, error) {
	resp, _, err := s.client.From(config.CollectionMessages).
		Select("*", "", false).
		Eq("user_id", userID).
		Gte("created_at", since.Format(time.RFC3339)).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	return decodeRows[types.Message](resp)
}

func (s *Store) UpdateMessageStatus(_ context.Context, userID, id string, status types.MessageStatus) (types.Message, error) {
	resp, _, err := s.client.From(config.CollectionMessages).
		Update(map[string]interface{}{"status": status}, "representation", "").
		Eq("id", id).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return types.Message{}, fmt.Errorf("failed to update message status: %w", err)
	}
	return firstRow[types.Message](resp)
}

func (s *Store) HasExternalMessage(_ context.Context, userID, externalID string) (bool, error) {
	resp, _, err := s.client.From(config.CollectionMessages).
		Select("id", "", false).
		Eq("user_id", userID).
		Eq("external_id", externalID).
		Limit(1, "").
		Execute()
	if err != nil {
		return false, fmt.Errorf("failed to look up message: %w", err)
	}
	rows, err := decodeRows[map[string]interface{}](resp)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// ─────────────────────────────────────────
// Reminders
// ─────────────────────────────────────────

func (s *Store) findPending(userID, contactID string, t types.ReminderType) (types.Reminder, error) {
	resp, _, err := s.client.From(config.CollectionReminders).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("contact_id", contactID).
		Eq("type", string(t)).
		Eq("status", string(types.ReminderPending)).
		Limit(1, "").
		Execute()
	if err != nil {
		return types.Reminder{}, fmt.Errorf("failed to fetch pending reminder: %w", err)
	}
	return firstRow[types.Reminder](resp)
}

// CreatePendingReminder checks for a pending duplicate before inserting. The check and the
// insert are separate requests; the partial unique index reminders_one_pending_idx from
// schema.sql turns a lost race into an insert error, after which the winner is looked up
// again.
func (s *Store) CreatePendingReminder(_ context.Context, r types.Reminder) (string, bool, error) {
	existing, err := s.findPending(r.UserID, r.ContactID, r.Type)
	if err == nil {
		return existing.ID, false, nil
	}
	if err != store.ErrNotFound {
		return "", false, err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, _, insertErr := s.client.From(config.CollectionReminders).Insert(r, false, "", "minimal", "").Execute()
	if insertErr != nil {
		if winner, err := s.findPending(r.UserID, r.ContactID, r.Type); err == nil {
			return winner.ID, false, nil
		}
		return "", false, fmt.Errorf("failed to insert reminder: %w", insertErr)
	}
	return r.ID, true, nil
}

func (s *Store) GetReminder(_ context.Context, id string) (types.Reminder, error) {
	resp, _, err := s.client.From(config.CollectionReminders).
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return types.Reminder{}, fmt.Errorf("failed to fetch reminder: %w", err)
	}
	return firstRow[types.Reminder](resp)
}

func (s *Store) ListReminders(_ context.Context, userID string, status types.ReminderStatus) ([]types.Reminder, error) {
	q := s.client.From(config.CollectionReminders).
		Select("*", "", false).
		Eq("user_id", userID)
	if status != "" {
		q = q.Eq("status", string(status))
	}

	resp, _, err := q.Order("created_at", &postgrest.OrderOpts{Ascending: true}).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	return decodeRows[types.Reminder](resp)
}

func (s *Store) ListDueReminders(_ context.Context, t time.Time) ([]types.Reminder, error) {
	resp, _, err := s.client.From(config.CollectionReminders).
		Select("*", "", false).
		Eq("status", string(types.ReminderPending)).
		Lte("scheduled_for", t.Format(time.RFC3339)).
		Order("scheduled_for", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due reminders: %w", err)
	}
	return decodeRows[types.Reminder](resp)
}

func (s *Store) UpdateReminder(ctx context.Context, id string, patch types.ReminderPatch) (types.Reminder, error) {
	if patch.Empty() {
		return s.GetReminder(ctx, id)
	}

	resp, _, err := s.client.From(config.CollectionReminders).
		Update(patch, "representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return types.Reminder{}, fmt.Errorf("failed to update reminder: %w", err)
	}
	return firstRow[types.Reminder](resp)
}

func (s *Store) DeleteReminder(_ context.Context, id string) error {
	resp, _, err := s.client.From(config.CollectionReminders).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	_, err = firstRow[types.Reminder](resp)
	return err
}

func (s *Store) ClearReminders(_ context.Context, userID string) (int, error) {
	resp, _, err := s.client.From(config.CollectionReminders).
		Delete("representation", "").
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to clear reminders: %w", err)
	}
	rows, err := decodeRows[types.Reminder](resp)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// ─────────────────────────────────────────
// Memories
// ─────────────────────────────────────────

func (s *Store) AppendMemory(_ context.Context, e *types.MemoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, _, err := s.client.From(config.CollectionMemories).Insert(e, false, "", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to insert memory: %w", err)
	}
	return nil
}

func (s *Store) ListMemories(_ context.Context, userID, contactID string, limit int) ([]types.MemoryEntry, error) {
	q := s.client.From(config.CollectionMemories).
		Select("*", "", false).
		Eq("user_id", userID).
		Eq("contact_id", contactID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})
	if limit > 0 {
		q = q.Limit(limit, "")
	}

	resp, _, err := q.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch memories: %w", err)
	}
	return decodeRows[types.MemoryEntry](resp)
}
