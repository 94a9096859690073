package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"pingchain/types"
)

func TestResendNotifierSendsEmail(t *testing.T) {
	var got resendEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	n := NewResendNotifier("key", "from@example.com", Recipients{"u1": "me@example.com"}).WithBaseURL(srv.URL)
	err := n.Notify(context.Background(), types.Reminder{
		ID: "r1", UserID: "u1", ContactName: "Dana", Message: "Dana asked about lunch", Type: types.ReminderQuestion,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"me@example.com"}, got.To)
	require.Equal(t, "Dana is waiting for your reply", got.Subject)
}

func TestResendNotifierReportsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewResendNotifier("key", "from@example.com", Recipients{"u1": "me@example.com"}).WithBaseURL(srv.URL)
	require.Error(t, n.Notify(context.Background(), types.Reminder{ID: "r1", UserID: "u1"}))
}

func TestResendNotifierRoutesByOwner(t *testing.T) {
	var mu sync.Mutex
	got := map[string][]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var email resendEmail
		require.NoError(t, json.NewDecoder(r.Body).Decode(&email))
		mu.Lock()
		got[email.Subject] = email.To
		mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer srv.Close()

	n := NewResendNotifier("key", "from@example.com", Recipients{
		"u1": "ana@example.com",
		"u2": "ben@example.com",
	}).WithBaseURL(srv.URL)

	ctx := context.Background()
	require.NoError(t, n.Notify(ctx, types.Reminder{ID: "r1", UserID: "u1", ContactName: "Dana", Type: types.ReminderOverdue}))
	require.NoError(t, n.Notify(ctx, types.Reminder{ID: "r2", UserID: "u2", ContactName: "Sam", Type: types.ReminderOverdue}))
	require.NoError(t, n.Notify(ctx, types.Reminder{ID: "r3", UserID: "u3", ContactName: "Lee", Type: types.ReminderOverdue}))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, map[string][]string{
		"Follow up with Dana": {"ana@example.com"},
		"Follow up with Sam":  {"ben@example.com"},
	}, got)
}
