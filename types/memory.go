package types

import "time"

// MemoryEntry is a per-interaction annotation for a (user, contact) pair. Entries are append-only.
type MemoryEntry struct {
	ID                 string    `json:"id,omitempty"`
	UserID             string    `json:"user_id"`
	ContactID          string    `json:"contact_id"`
	Content            string    `json:"content"`
	Context            string    `json:"context"`
	EmotionalContext   string    `json:"emotional_context,omitempty"`
	CommunicationStyle string    `json:"communication_style,omitempty"`
	Topics             []string  `json:"topics,omitempty"`
	ResponseQuality    string    `json:"response_quality,omitempty"`
	Sentiment          string    `json:"sentiment,omitempty"`
	Urgency            Urgency   `json:"urgency,omitempty"`
	Category           string    `json:"category,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type MemoryResponse struct {
	Success      bool        `json:"success"`
	Memory       MemoryEntry `json:"memory,omitempty"`
	ErrorMessage string      `json:"error,omitempty"`
}

type GetMemoriesResponse struct {
	Success      bool          `json:"success"`
	Memories     []MemoryEntry `json:"memories"`
	ErrorMessage string        `json:"error,omitempty"`
}
