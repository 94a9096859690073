// Package firestore persists contacts, messages, reminders and memories in Cloud Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pingchain/config"
	"pingchain/store"
	"pingchain/types"
)

type Store struct {
	client *firestore.Client
}

var _ store.Store = (*Store)(nil)

// NewStore creates a Firestore store for the given GCP project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) contactsCol() *firestore.CollectionRef {
	return s.client.Collection(config.CollectionContacts)
}

func (s *Store) messagesCol() *firestore.CollectionRef {
	return s.client.Collection(config.CollectionMessages)
}

func (s *Store) remindersCol() *firestore.CollectionRef {
	return s.client.Collection(config.CollectionReminders)
}

func (s *Store) memoriesCol() *firestore.CollectionRef {
	return s.client.Collection(config.CollectionMemories)
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// collect drains an iterator, decoding each snapshot with decode.
func collect[T any](iter *firestore.DocumentIterator, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	defer iter.Stop()

	out := []T{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type contactDoc struct {
	UserID    string    `firestore:"user_id"`
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Platform  string    `firestore:"platform"`
	Handle    string    `firestore:"handle"`
	Notes     string    `firestore:"notes"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	ContactID   string    `firestore:"contact_id"`
	UserID      string    `firestore:"user_id"`
	Sender      string    `firestore:"sender"`
	Content     string    `firestore:"content"`
	Platform    string    `firestore:"platform"`
	Status      string    `firestore:"status"`
	CreatedAt   time.Time `firestore:"created_at"`
	AIGenerated bool      `firestore:"ai_generated"`
	ExternalID  string    `firestore:"external_id"`
}

type reminderDoc struct {
	UserID       string     `firestore:"user_id"`
	ContactID    string     `firestore:"contact_id"`
	ContactName  string     `firestore:"contact_name"`
	Message      string     `firestore:"message"`
	Type         string     `firestore:"type"`
	Priority     string     `firestore:"priority"`
	CreatedAt    time.Time  `firestore:"created_at"`
	ScheduledFor *time.Time `firestore:"scheduled_for"`
	SentAt       *time.Time `firestore:"sent_at"`
	Status       string     `firestore:"status"`
}

type memoryDoc struct {
	UserID             string    `firestore:"user_id"`
	ContactID          string    `firestore:"contact_id"`
	Content            string    `firestore:"content"`
	Context            string    `firestore:"context"`
	EmotionalContext   string    `firestore:"emotional_context"`
	CommunicationStyle string    `firestore:"communication_style"`
	Topics             []string  `firestore:"topics"`
	ResponseQuality    string    `firestore:"response_quality"`
	Sentiment          string    `firestore:"sentiment"`
	Urgency            string    `firestore:"urgency"`
	Category           string    `firestore:"category"`
	CreatedAt          time.Time `firestore:"created_at"`
}

func toContactDoc(c *types.Contact) contactDoc {
	return contactDoc{
		UserID:    c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		Platform:  string(c.Platform),
		Handle:    c.Handle,
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func decodeContact(snap *firestore.DocumentSnapshot) (types.Contact, error) {
	var doc contactDoc
	if err := snap.DataTo(&doc); err != nil {
		return types.Contact{}, fmt.Errorf("decode contactDoc: %w", err)
	}
	return types.Contact{
		ID:        snap.Ref.ID,
		UserID:    doc.UserID,
		Name:      doc.Name,
		Email:     doc.Email,
		Platform:  types.Platform(doc.Platform),
		Handle:    doc.Handle,
		Notes:     doc.Notes,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func decodeMessage(snap *firestore.DocumentSnapshot) (types.Message, error) {
	var doc messageDoc
	if err := snap.DataTo(&doc); err != nil {
		return types.Message{}, fmt.Errorf("decode messageDoc: %w", err)
	}
	return types.Message{
		ID:          snap.Ref.ID,
		ContactID:   doc.ContactID,
		UserID:      doc.UserID,
		Sender:      types.Sender(doc.Sender),
		Content:     doc.Content,
		Platform:    types.Platform(doc.Platform),
		Status:      types.MessageStatus(doc.Status),
		CreatedAt:   doc.CreatedAt,
		AIGenerated: doc.AIGenerated,
		ExternalID:  doc.ExternalID,
	}, nil
}

func toReminderDoc(r types.Reminder) reminderDoc {
	return reminderDoc{
		UserID:       r.UserID,
		ContactID:    r.ContactID,
		ContactName:  r.ContactName,
		Message:      r.Message,
		Type:         string(r.Type),
		Priority:     string(r.Priority),
		CreatedAt:    r.CreatedAt,
		ScheduledFor: r.ScheduledFor,
		SentAt:       r.SentAt,
		Status:       string(r.Status),
	}
}

func decodeReminder(snap *firestore.DocumentSnapshot) (types.Reminder, error) {
	var doc reminderDoc
	if err := snap.DataTo(&doc); err != nil {
		return types.Reminder{}, fmt.Errorf("decode reminderDoc: %w", err)
	}
	return types.Reminder{
		ID:           snap.Ref.ID,
		UserID:       doc.UserID,
		ContactID:    doc.ContactID,
		ContactName:  doc.ContactName,
		Message:      doc.Message,
		Type:         types.ReminderType(doc.Type),
		Priority:     types.Priority(doc.Priority),
		CreatedAt:    doc.CreatedAt,
		ScheduledFor: doc.ScheduledFor,
		SentAt:       doc.SentAt,
		Status:       types.ReminderStatus(doc.Status),
	}, nil
}

func decodeMemory(snap *firestore.DocumentSnapshot) (types.MemoryEntry, error) {
	var doc memoryDoc
	if err := snap.DataTo(&doc); err != nil {
		return types.MemoryEntry{}, fmt.Errorf("decode memoryDoc: %w", err)
	}
	return types.MemoryEntry{
		ID:                 snap.Ref.ID,
		UserID:             doc.UserID,
		ContactID:          doc.ContactID,
		Content:            doc.Content,
		Context:            doc.Context,
		EmotionalContext:   doc.EmotionalContext,
		CommunicationStyle: doc.CommunicationStyle,
		Topics:             doc.Topics,
		ResponseQuality:    doc.ResponseQuality,
		Sentiment:          doc.Sentiment,
		Urgency:            types.Urgency(doc.Urgency),
		Category:           doc.Category,
		CreatedAt:          doc.CreatedAt,
	}, nil
}

// ─────────────────────────────────────────
// ContactStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateContact(ctx context.Context, c *types.Contact) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := s.contactsCol().Doc(c.ID).Create(ctx, toContactDoc(c)); err != nil {
		return fmt.Errorf("firestore CreateContact: %w", err)
	}
	return nil
}

func (s *Store) GetContact(ctx context.Context, userID, id string) (types.Contact, error) {
	snap, err := s.contactsCol().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return types.Contact{}, store.ErrNotFound
		}
		return types.Contact{}, fmt.Errorf("firestore GetContact: %w", err)
	}
	c, err := decodeContact(snap)
	if err != nil {
		return types.Contact{}, err
	}
	if c.UserID != userID {
		return types.Contact{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListContacts(ctx context.Context, userID string) ([]types.Contact, error) {
	q := s.contactsCol().Where("user_id", "==", userID).OrderBy("name", firestore.Asc)
	out, err := collect(q.Documents(ctx), decodeContact)
	if err != nil {
		return nil, fmt.Errorf("firestore ListContacts: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateContact(ctx context.Context, c *types.Contact) error {
	if _, err := s.GetContact(ctx, c.UserID, c.ID); err != nil {
		return err
	}
	if _, err := s.contactsCol().Doc(c.ID).Set(ctx, toContactDoc(c)); err != nil {
		return fmt.Errorf("firestore UpdateContact: %w", err)
	}
	return nil
}

func (s *Store) DeleteContact(ctx context.Context, userID, id string) error {
	if _, err := s.GetContact(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.contactsCol().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteContact: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, m *types.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	doc := messageDoc{
		ContactID:   m.ContactID,
		UserID:      m.UserID,
		Sender:      string(m.Sender),
		Content:     m.Content,
		Platform:    string(m.Platform),
		Status:      string(m.Status),
		CreatedAt:   m.CreatedAt,
		AIGenerated: m.AIGenerated,
		ExternalID:  m.ExternalID,
	}
	if _, err := s.messagesCol().Doc(m.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) ListMessagesByContact(ctx context.Context, userID, contactID string, limit int) ([]types.Message, error) {
	q := s.messagesCol().
		Where("user_id", "==", userID).
		Where("contact_id", "==", contactID).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out, err := collect(q.Documents(ctx), decodeMessage)
	if err != nil {
		return nil, fmt.Errorf("firestore ListMessagesByContact: %w", err)
	}
	// newest-first query, oldest-first result
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Store) ListMessagesSince(ctx context.Context, userID string, since time.Time) ([]types.Message, error) {
	q := s.messagesCol().
		Where("user_id", "==", userID).
		Where("created_at", ">=", since).
		OrderBy("created_at", firestore.Asc)

	out, err := collect(q.Documents(ctx), decodeMessage)
	if err != nil {
		return nil, fmt.Errorf("firestore ListMessagesSince: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateMessageStatus(ctx context.Context, userID, id string, st types.MessageStatus) (types.Message, error) {
	ref := s.messagesCol().Doc(id)
	snap, err := ref.Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return types.Message{}, store.ErrNotFound
		}
		return types.Message{}, fmt.Errorf("firestore UpdateMessageStatus: %w", err)
	}
	m, err := decodeMessage(snap)
	if err != nil {
		return types.Message{}, err
	}
	if m.UserID != userID {
		return types.Message{}, store.ErrNotFound
	}

	if _, err := ref.Update(ctx, []firestore.Update{{Path: "status", Value: string(st)}}); err != nil {
		return types.Message{}, fmt.Errorf("firestore UpdateMessageStatus: %w", err)
	}
	m.Status = st
	return m, nil
}

func (s *Store) HasExternalMessage(ctx context.Context, userID, externalID string) (bool, error) {
	iter := s.messagesCol().
		Where("user_id", "==", userID).
		Where("external_id", "==", externalID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("firestore HasExternalMessage: %w", err)
	}
	return true, nil
}

// ─────────────────────────────────────────
// ReminderStore implementation
// ─────────────────────────────────────────

// CreatePendingReminder runs the duplicate check and the insert in one transaction.
func (s *Store) CreatePendingReminder(ctx context.Context, r types.Reminder) (string, bool, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	q := s.remindersCol().
		Where("user_id", "==", r.UserID).
		Where("contact_id", "==", r.ContactID).
		Where("type", "==", string(r.Type)).
		Where("status", "==", string(types.ReminderPending)).
		Limit(1)

	id, created := r.ID, true
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(q).GetAll()
		if err != nil {
			return err
		}
		if len(snaps) > 0 {
			id, created = snaps[0].Ref.ID, false
			return nil
		}
		id, created = r.ID, true
		return tx.Create(s.remindersCol().Doc(r.ID), toReminderDoc(r))
	})
	if err != nil {
		return "", false, fmt.Errorf("firestore CreatePendingReminder: %w", err)
	}
	return id, created, nil
}

func (s *Store) GetReminder(ctx context.Context, id string) (types.Reminder, error) {
	snap, err := s.remindersCol().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return types.Reminder{}, store.ErrNotFound
		}
		return types.Reminder{}, fmt.Errorf("firestore GetReminder: %w", err)
	}
	return decodeReminder(snap)
}

func (s *Store) ListReminders(ctx context.Context, userID string, st types.ReminderStatus) ([]types.Reminder, error) {
	q := s.remindersCol().Where("user_id", "==", userID)
	if st != "" {
		q = q.Where("status", "==", string(st))
	}
	q = q.OrderBy("created_at", firestore.Asc)

	out, err := collect(q.Documents(ctx), decodeReminder)
	if err != nil {
		return nil, fmt.Errorf("firestore ListReminders: %w", err)
	}
	return out, nil
}

func (s *Store) ListDueReminders(ctx context.Context, t time.Time) ([]types.Reminder, error) {
	q := s.remindersCol().
		Where("status", "==", string(types.ReminderPending)).
		Where("scheduled_for", "<=", t).
		OrderBy("scheduled_for", firestore.Asc)

	out, err := collect(q.Documents(ctx), decodeReminder)
	if err != nil {
		return nil, fmt.Errorf("firestore ListDueReminders: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateReminder(ctx context.Context, id string, patch types.ReminderPatch) (types.Reminder, error) {
	var updates []firestore.Update
	if patch.Message != nil {
		updates = append(updates, firestore.Update{Path: "message", Value: *patch.Message})
	}
	if patch.Priority != nil {
		updates = append(updates, firestore.Update{Path: "priority", Value: string(*patch.Priority)})
	}
	if patch.ScheduledFor != nil {
		updates = append(updates, firestore.Update{Path: "scheduled_for", Value: *patch.ScheduledFor})
	}
	if patch.SentAt != nil {
		updates = append(updates, firestore.Update{Path: "sent_at", Value: *patch.SentAt})
	}
	if patch.Status != nil {
		updates = append(updates, firestore.Update{Path: "status", Value: string(*patch.Status)})
	}

	ref := s.remindersCol().Doc(id)
	if len(updates) > 0 {
		if _, err := ref.Update(ctx, updates); err != nil {
			if isNotFound(err) {
				return types.Reminder{}, store.ErrNotFound
			}
			return types.Reminder{}, fmt.Errorf("firestore UpdateReminder: %w", err)
		}
	}
	return s.GetReminder(ctx, id)
}

func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	ref := s.remindersCol().Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("firestore DeleteReminder: %w", err)
	}
	return nil
}

func (s *Store) ClearReminders(ctx context.Context, userID string) (int, error) {
	iter := s.remindersCol().Where("user_id", "==", userID).Documents(ctx)
	refs, err := collect(iter, func(snap *firestore.DocumentSnapshot) (*firestore.DocumentRef, error) {
		return snap.Ref, nil
	})
	if err != nil {
		return 0, fmt.Errorf("firestore ClearReminders: %w", err)
	}

	for _, ref := range refs {
		if _, err := ref.Delete(ctx); err != nil {
			return 0, fmt.Errorf("firestore ClearReminders: %w", err)
		}
	}
	return len(refs), nil
}

// ─────────────────────────────────────────
// MemoryStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMemory(ctx context.Context, e *types.MemoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	doc := memoryDoc{
		UserID:             e.UserID,
		ContactID:          e.ContactID,
		Content:            e.Content,
		Context:            e.Context,
		EmotionalContext:   e.EmotionalContext,
		CommunicationStyle: e.CommunicationStyle,
		Topics:             e.Topics,
		ResponseQuality:    e.ResponseQuality,
		Sentiment:          e.Sentiment,
		Urgency:            string(e.Urgency),
		Category:           e.Category,
		CreatedAt:          e.CreatedAt,
	}
	if _, err := s.memoriesCol().Doc(e.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendMemory: %w", err)
	}
	return nil
}

func (s *Store) ListMemories(ctx context.Context, userID, contactID string, limit int) ([]types.MemoryEntry, error) {
	q := s.memoriesCol().
		Where("user_id", "==", userID).
		Where("contact_id", "==", contactID).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out, err := collect(q.Documents(ctx), decodeMemory)
	if err != nil {
		return nil, fmt.Errorf("firestore ListMemories: %w", err)
	}
	return out, nil
}
