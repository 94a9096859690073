package platforms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pingchain/types"
)

const discordBaseURL = "https://discord.com/api/v10"

type discordMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Author    struct {
		ID  string `json:"id"`
		Bot bool   `json:"bot"`
	} `json:"author"`
}

type DiscordAdapter struct {
	http      *resty.Client
	channel   string
	selfID    string
	contactID string
}

func NewDiscordAdapter(baseURL string, cfg map[string]string) *DiscordAdapter {
	if baseURL == "" {
		baseURL = discordBaseURL
	}
	return &DiscordAdapter{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Authorization", "Bot "+cfg[KeyToken]).
			SetTimeout(20 * time.Second),
		channel:   cfg[KeyChannel],
		selfID:    cfg[KeySelfID],
		contactID: cfg[KeyContactID],
	}
}

func (a *DiscordAdapter) Name() types.Platform { return types.PlatformDiscord }

// Fetch returns up to the last 100 messages of the channel posted after since.
func (a *DiscordAdapter) Fetch(ctx context.Context, since time.Time) ([]types.Message, error) {
	var out []discordMessage
	resp, err := a.http.R().
		SetContext(ctx).
		SetPathParam("channel", a.channel).
		SetQueryParam("limit", "100").
		SetResult(&out).
		Get("/channels/{channel}/messages")
	if err != nil {
		return nil, fmt.Errorf("discord request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("discord API returned status %d", resp.StatusCode())
	}

	msgs := make([]types.Message, 0, len(out))
	for _, m := range out {
		if !m.Timestamp.After(since) || strings.TrimSpace(m.Content) == "" {
			continue
		}
		sender, status := senderFor(m.Author.ID, a.selfID)
		msgs = append(msgs, types.Message{
			ContactID:  a.contactID,
			Sender:     sender,
			Content:    m.Content,
			Platform:   types.PlatformDiscord,
			Status:     status,
			CreatedAt:  m.Timestamp.UTC(),
			ExternalID: "discord:" + m.ID,
		})
	}
	return msgs, nil
}
