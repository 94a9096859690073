package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchain/store"
	"pingchain/store/memory"
	"pingchain/types"
)

func TestContactsAreScopedByUser(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	c := &types.Contact{UserID: "u1", Name: "Dana"}
	require.NoError(t, s.CreateContact(ctx, c))
	require.NotEmpty(t, c.ID)

	_, err := s.GetContact(ctx, "u2", c.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetContact(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", got.Name)

	require.ErrorIs(t, s.DeleteContact(ctx, "u2", c.ID), store.ErrNotFound)
	require.NoError(t, s.DeleteContact(ctx, "u1", c.ID))

	list, err := s.ListContacts(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMessagesOrderedOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, content := range []string{"third", "first", "second"} {
		offsets := []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour}
		require.NoError(t, s.AppendMessage(ctx, &types.Message{
			UserID: "u1", ContactID: "c1", Content: content, CreatedAt: base.Add(offsets[i]),
		}))
	}

	msgs, err := s.ListMessagesByContact(ctx, "u1", "c1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "third", msgs[2].Content)

	limited, err := s.ListMessagesByContact(ctx, "u1", "c1", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "second", limited[0].Content)

	since, err := s.ListMessagesSince(ctx, "u1", base.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 2)
}

func TestCreatePendingReminderIsConditional(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	var wg sync.WaitGroup
	ids := make([]string, 20)
	created := make([]bool, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], created[i], _ = s.CreatePendingReminder(ctx, types.Reminder{
				ID: "r" + string(rune('a'+i)), UserID: "u1", ContactID: "c1",
				Type: types.ReminderQuestion, Status: types.ReminderPending,
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range ids {
		if created[i] {
			winners++
		}
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, winners)

	all, err := s.ListReminders(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDueRemindersAndClear(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Minute), now.Add(time.Hour)

	_, _, err := s.CreatePendingReminder(ctx, types.Reminder{ID: "due", UserID: "u1", ContactID: "c1", Type: types.ReminderScheduled, Status: types.ReminderPending, ScheduledFor: &past})
	require.NoError(t, err)
	_, _, err = s.CreatePendingReminder(ctx, types.Reminder{ID: "later", UserID: "u1", ContactID: "c2", Type: types.ReminderScheduled, Status: types.ReminderPending, ScheduledFor: &future})
	require.NoError(t, err)
	_, _, err = s.CreatePendingReminder(ctx, types.Reminder{ID: "now", UserID: "u1", ContactID: "c3", Type: types.ReminderQuestion, Status: types.ReminderPending})
	require.NoError(t, err)

	due, err := s.ListDueReminders(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "due", due[0].ID)

	n, err := s.ClearReminders(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemoriesNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	for _, content := range []string{"a", "b", "c"} {
		require.NoError(t, s.AppendMemory(ctx, &types.MemoryEntry{UserID: "u1", ContactID: "c1", Content: content}))
	}
	require.NoError(t, s.AppendMemory(ctx, &types.MemoryEntry{UserID: "u1", ContactID: "c2", Content: "other"}))

	got, err := s.ListMemories(ctx, "u1", "c1", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Content)
	assert.Equal(t, "b", got[1].Content)
}
