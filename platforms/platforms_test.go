package platforms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchain/store/memory"
	"pingchain/types"
)

func settings() map[string]string {
	return map[string]string{
		KeyToken:     "tok",
		KeyChannel:   "C1",
		KeySelfID:    "U_ME",
		KeyContactID: "contact-1",
	}
}

func TestSlackFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations.history", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "C1", r.URL.Query().Get("channel"))
		assert.Equal(t, "1718000000", r.URL.Query().Get("oldest"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"messages":[
			{"type":"message","user":"U_DANA","text":"Can we meet tomorrow?","ts":"1718000100.000200"},
			{"type":"message","user":"U_ME","text":"Sure","ts":"1718000200.000000"},
			{"type":"message","subtype":"channel_join","user":"U_X","text":"joined","ts":"1718000300.000000"}
		]}`))
	}))
	defer srv.Close()

	msgs, err := NewSlackAdapter(srv.URL, settings()).Fetch(context.Background(), time.Unix(1718000000, 0))
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, types.SenderContact, msgs[0].Sender)
	assert.Equal(t, types.MessageStatusReceived, msgs[0].Status)
	assert.Equal(t, "contact-1", msgs[0].ContactID)
	assert.Equal(t, "slack:C1:1718000100.000200", msgs[0].ExternalID)
	assert.Equal(t, time.Unix(1718000100, 200000).UTC(), msgs[0].CreatedAt)
	assert.Equal(t, types.SenderUser, msgs[1].Sender)
}

func TestSlackFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	_, err := NewSlackAdapter(srv.URL, settings()).Fetch(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestDiscordFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels/C1/messages", r.URL.Path)
		assert.Equal(t, "Bot tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"2","content":"see you then","timestamp":"2025-06-01T10:00:00Z","author":{"id":"U_ME"}},
			{"id":"1","content":"lunch?","timestamp":"2025-06-01T09:00:00Z","author":{"id":"U_DANA"}},
			{"id":"0","content":"old","timestamp":"2025-05-01T09:00:00Z","author":{"id":"U_DANA"}}
		]`))
	}))
	defer srv.Close()

	since := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)
	msgs, err := NewDiscordAdapter(srv.URL, settings()).Fetch(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "discord:2", msgs[0].ExternalID)
	assert.Equal(t, types.SenderUser, msgs[0].Sender)
	assert.Equal(t, types.SenderContact, msgs[1].Sender)
}

func TestNewAdapterValidates(t *testing.T) {
	_, err := NewAdapter(types.PlatformSlack, map[string]string{KeyToken: "x"})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewAdapter(types.PlatformWhatsApp, settings())
	require.ErrorIs(t, err, ErrInvalidConfig)

	a, err := NewAdapter(types.PlatformDiscord, settings())
	require.NoError(t, err)
	assert.Equal(t, types.PlatformDiscord, a.Name())
}

func TestAdapterIgnoresUserSuppliedHost(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	cfg := settings()
	cfg["base_url"] = srv.URL

	slack, err := NewAdapter(types.PlatformSlack, cfg)
	require.NoError(t, err)
	assert.Equal(t, slackBaseURL, slack.(*SlackAdapter).http.BaseURL)

	discord, err := NewAdapter(types.PlatformDiscord, cfg)
	require.NoError(t, err)
	assert.Equal(t, discordBaseURL, discord.(*DiscordAdapter).http.BaseURL)

	custom, err := NewAdapterFactory(Endpoints{Slack: srv.URL})(types.PlatformSlack, cfg)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, custom.(*SlackAdapter).http.BaseURL)
	assert.Zero(t, hits)
}

type fakeAdapter struct {
	msgs []types.Message
	err  error
}

func (f *fakeAdapter) Name() types.Platform { return types.PlatformSlack }

func (f *fakeAdapter) Fetch(context.Context, time.Time) ([]types.Message, error) {
	return f.msgs, f.err
}

func TestSyncSkipsKnownMessages(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	a := &fakeAdapter{msgs: []types.Message{
		{ContactID: "c1", Sender: types.SenderContact, Content: "hi?", ExternalID: "slack:C1:1", CreatedAt: time.Now()},
		{ContactID: "c1", Sender: types.SenderUser, Content: "hey", ExternalID: "slack:C1:2", CreatedAt: time.Now()},
	}}

	n, err := Sync(ctx, ms, "u1", a, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Sync(ctx, ms, "u1", a, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, n)

	stored, err := ms.ListMessagesByContact(ctx, "u1", "c1", 0)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, "u1", stored[0].UserID)
}

func TestManagerStartStop(t *testing.T) {
	ctx := context.Background()
	ms := memory.NewStore()
	fake := &fakeAdapter{msgs: []types.Message{{ContactID: "c1", Content: "hello", ExternalID: "x1"}}}
	m := NewManager(ms, 0, WithAdapterFactory(func(types.Platform, map[string]string) (Adapter, error) {
		return fake, nil
	}))
	defer m.Shutdown()

	require.NoError(t, m.Start(ctx, "u1", types.PlatformSlack, nil))
	assert.True(t, m.Running("u1", types.PlatformSlack))
	assert.False(t, m.Running("u2", types.PlatformSlack))

	ok, err := ms.HasExternalMessage(ctx, "u1", "x1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, m.Stop("u1", types.PlatformSlack))
	assert.False(t, m.Running("u1", types.PlatformSlack))
	require.ErrorIs(t, m.Stop("u1", types.PlatformSlack), ErrNotRunning)
}

func TestManagerPollIntervalStaysBelowAnHour(t *testing.T) {
	assert.Equal(t, 59, NewManager(memory.NewStore(), 59).pollMinutes)
	assert.Equal(t, DefaultPollMinutes, NewManager(memory.NewStore(), 90).pollMinutes)
	assert.Equal(t, DefaultPollMinutes, NewManager(memory.NewStore(), -1).pollMinutes)
}

func TestManagerStartFailsOnFirstSync(t *testing.T) {
	m := NewManager(memory.NewStore(), 5, WithAdapterFactory(func(types.Platform, map[string]string) (Adapter, error) {
		return &fakeAdapter{err: errors.New("invalid_auth")}, nil
	}))
	err := m.Start(context.Background(), "u1", types.PlatformSlack, nil)
	require.Error(t, err)
	assert.False(t, m.Running("u1", types.PlatformSlack))
}
