// Package platforms pulls messages from chat platforms into the message store.
package platforms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pingchain/types"
)

// Adapter fetches messages of one conversation newer than since.
type Adapter interface {
	Name() types.Platform
	Fetch(ctx context.Context, since time.Time) ([]types.Message, error)
}

var ErrInvalidConfig = errors.New("invalid platform config")

// Config keys understood by the adapters.
const (
	KeyToken     = "token"
	KeyChannel   = "channel"
	KeySelfID    = "self_user_id"
	KeyContactID = "contact_id"
)

// AdapterFactory builds an adapter for a platform from user supplied settings.
type AdapterFactory func(platform types.Platform, cfg map[string]string) (Adapter, error)

// Endpoints are the API base URLs the adapters talk to. They are operator settings and never
// come from user supplied config.
type Endpoints struct {
	Slack   string
	Discord string
}

var DefaultEndpoints = Endpoints{
	Slack:   slackBaseURL,
	Discord: discordBaseURL,
}

func required(cfg map[string]string, keys ...string) error {
	for _, k := range keys {
		if cfg[k] == "" {
			return fmt.Errorf("%w: missing %q", ErrInvalidConfig, k)
		}
	}
	return nil
}

// NewAdapterFactory returns a factory whose adapters call the given endpoints.
func NewAdapterFactory(ep Endpoints) AdapterFactory {
	return func(platform types.Platform, cfg map[string]string) (Adapter, error) {
		if err := required(cfg, KeyToken, KeyChannel, KeySelfID, KeyContactID); err != nil {
			return nil, err
		}
		switch platform {
		case types.PlatformSlack:
			return NewSlackAdapter(ep.Slack, cfg), nil
		case types.PlatformDiscord:
			return NewDiscordAdapter(ep.Discord, cfg), nil
		default:
			return nil, fmt.Errorf("%w: unsupported platform %s", ErrInvalidConfig, platform)
		}
	}
}

// NewAdapter is the default AdapterFactory, bound to the public platform APIs.
func NewAdapter(platform types.Platform, cfg map[string]string) (Adapter, error) {
	return NewAdapterFactory(DefaultEndpoints)(platform, cfg)
}

func senderFor(authorID, selfID string) (types.Sender, types.MessageStatus) {
	if authorID == selfID {
		return types.SenderUser, types.MessageStatusSent
	}
	return types.SenderContact, types.MessageStatusReceived
}
