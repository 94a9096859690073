package types

import "time"

type Sender string

const (
	SenderUser    Sender = "user"
	SenderContact Sender = "contact"
)

type Platform string

const (
	PlatformEmail    Platform = "email"
	PlatformSlack    Platform = "slack"
	PlatformDiscord  Platform = "discord"
	PlatformWhatsApp Platform = "whatsapp"
	PlatformManual   Platform = "manual"
)

// Message status is the only mutable field of a message.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
	MessageStatusFailed    MessageStatus = "failed"
	MessageStatusReceived  MessageStatus = "received"
)

func (s MessageStatus) Valid() bool {
	switch s {
	case MessageStatusSent, MessageStatusDelivered, MessageStatusRead, MessageStatusFailed, MessageStatusReceived:
		return true
	}
	return false
}

type Message struct {
	ID          string        `json:"id,omitempty"`
	ContactID   string        `json:"contact_id"`
	UserID      string        `json:"user_id"`
	Sender      Sender        `json:"sender"`
	Content     string        `json:"content"`
	Platform    Platform      `json:"platform"`
	Status      MessageStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	AIGenerated bool          `json:"ai_generated"`
	// ExternalID is the platform-side id for synced messages, empty otherwise.
	ExternalID string `json:"external_id,omitempty"`
}

type CreateMessageRequest struct {
	ContactID   string    `json:"contact_id"`
	Sender      Sender    `json:"sender"`
	Content     string    `json:"content"`
	Platform    Platform  `json:"platform"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

type UpdateMessageStatusRequest struct {
	Status MessageStatus `json:"status"`
}

type MessageResponse struct {
	Success      bool    `json:"success"`
	Message      Message `json:"message,omitempty"`
	ErrorMessage string  `json:"error,omitempty"`
}

type GetMessagesResponse struct {
	Success      bool      `json:"success"`
	Messages     []Message `json:"messages"`
	Total        int       `json:"total"`
	ErrorMessage string    `json:"error,omitempty"`
}
