package platforms

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"pingchain/types"
)

const slackBaseURL = "https://slack.com/api"

type slackHistory struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Messages []struct {
		Type    string `json:"type"`
		Subtype string `json:"subtype"`
		User    string `json:"user"`
		Text    string `json:"text"`
		TS      string `json:"ts"`
	} `json:"messages"`
}

type SlackAdapter struct {
	http      *resty.Client
	channel   string
	selfID    string
	contactID string
}

func NewSlackAdapter(baseURL string, cfg map[string]string) *SlackAdapter {
	if baseURL == "" {
		baseURL = slackBaseURL
	}
	return &SlackAdapter{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(cfg[KeyToken]).
			SetTimeout(20 * time.Second),
		channel:   cfg[KeyChannel],
		selfID:    cfg[KeySelfID],
		contactID: cfg[KeyContactID],
	}
}

func (a *SlackAdapter) Name() types.Platform { return types.PlatformSlack }

func (a *SlackAdapter) Fetch(ctx context.Context, since time.Time) ([]types.Message, error) {
	var out slackHistory
	resp, err := a.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"channel": a.channel,
			"oldest":  strconv.FormatInt(since.Unix(), 10),
			"limit":   "200",
		}).
		SetResult(&out).
		Get("/conversations.history")
	if err != nil {
		return nil, fmt.Errorf("slack request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("slack API returned status %d", resp.StatusCode())
	}
	if !out.OK {
		return nil, fmt.Errorf("slack API error: %s", out.Error)
	}

	msgs := make([]types.Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		if m.Type != "message" || m.Subtype != "" || strings.TrimSpace(m.Text) == "" {
			continue
		}
		at, err := parseSlackTS(m.TS)
		if err != nil {
			continue
		}
		sender, status := senderFor(m.User, a.selfID)
		msgs = append(msgs, types.Message{
			ContactID:  a.contactID,
			Sender:     sender,
			Content:    m.Text,
			Platform:   types.PlatformSlack,
			Status:     status,
			CreatedAt:  at,
			ExternalID: "slack:" + a.channel + ":" + m.TS,
		})
	}
	return msgs, nil
}

// parseSlackTS reads "1718000000.000200" style timestamps.
func parseSlackTS(ts string) (time.Time, error) {
	secs, frac, _ := strings.Cut(ts, ".")
	s, err := strconv.ParseInt(secs, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad slack ts %q: %w", ts, err)
	}
	var micros int64
	if frac != "" {
		micros, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad slack ts %q: %w", ts, err)
		}
	}
	return time.Unix(s, micros*int64(time.Microsecond)).UTC(), nil
}
