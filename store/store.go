// Package store declares the persistence ports used by the services. Implementations live
// in the memory, firestore and supabase subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"pingchain/types"
)

var ErrNotFound = errors.New("not found")

type ContactStore interface {
	CreateContact(ctx context.Context, contact *types.Contact) error
	GetContact(ctx context.Context, userID, id string) (types.Contact, error)
	ListContacts(ctx context.Context, userID string) ([]types.Contact, error)
	UpdateContact(ctx context.Context, contact *types.Contact) error
	DeleteContact(ctx context.Context, userID, id string) error
}

// MessageStore lists messages oldest first.
type MessageStore interface {
	AppendMessage(ctx context.Context, msg *types.Message) error
	ListMessagesByContact(ctx context.Context, userID, contactID string, limit int) ([]types.Message, error)
	ListMessagesSince(ctx context.Context, userID string, since time.Time) ([]types.Message, error)
	UpdateMessageStatus(ctx context.Context, userID, id string, status types.MessageStatus) (types.Message, error)
	HasExternalMessage(ctx context.Context, userID, externalID string) (bool, error)
}

type ReminderStore interface {
	// CreatePendingReminder inserts r unless a pending reminder already exists for the same
	// (user, contact, type). In that case it returns the existing id and created=false.
	CreatePendingReminder(ctx context.Context, r types.Reminder) (id string, created bool, err error)
	GetReminder(ctx context.Context, id string) (types.Reminder, error)
	// ListReminders returns all of a user's reminders when status is empty.
	ListReminders(ctx context.Context, userID string, status types.ReminderStatus) ([]types.Reminder, error)
	// ListDueReminders returns pending reminders of every user scheduled at or before t.
	ListDueReminders(ctx context.Context, t time.Time) ([]types.Reminder, error)
	UpdateReminder(ctx context.Context, id string, patch types.ReminderPatch) (types.Reminder, error)
	DeleteReminder(ctx context.Context, id string) error
	ClearReminders(ctx context.Context, userID string) (int, error)
}

// MemoryStore is append-only.
type MemoryStore interface {
	AppendMemory(ctx context.Context, entry *types.MemoryEntry) error
	ListMemories(ctx context.Context, userID, contactID string, limit int) ([]types.MemoryEntry, error)
}

// Store bundles every port; each backend implements all of them.
type Store interface {
	ContactStore
	MessageStore
	ReminderStore
	MemoryStore
}

// IsDue reports whether a pending reminder is scheduled at or before t.
func IsDue(r types.Reminder, t time.Time) bool {
	return r.Status == types.ReminderPending && r.ScheduledFor != nil && !r.ScheduledFor.After(t)
}
