package types

import "time"

type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

type ConversationTopic string

const (
	TopicMeeting      ConversationTopic = "meeting"
	TopicWork         ConversationTopic = "work"
	TopicPersonal     ConversationTopic = "personal"
	TopicAppreciation ConversationTopic = "appreciation"
	TopicApology      ConversationTopic = "apology"
	TopicGeneral      ConversationTopic = "general"
)

type Health string

const (
	HealthExcellent      Health = "excellent"
	HealthGood           Health = "good"
	HealthNeedsAttention Health = "needs_attention"
	HealthAtRisk         Health = "at_risk"
)

// OpenLoop is derived from the message list on every analysis pass and never persisted.
type OpenLoop struct {
	ID        string            `json:"id"`
	MessageID string            `json:"message_id"`
	ContactID string            `json:"contact_id,omitempty"`
	Question  string            `json:"question"`
	AskedBy   Sender            `json:"asked_by"`
	CreatedAt time.Time         `json:"created_at"`
	Urgency   Urgency           `json:"urgency"`
	Context   ConversationTopic `json:"context"`
}

type ConversationContext struct {
	ContactID          string     `json:"contact_id"`
	OpenLoops          []OpenLoop `json:"open_loops"`
	PendingResponses   []OpenLoop `json:"pending_responses"`
	ConversationHealth Health     `json:"conversation_health"`
	ResponseTime       float64    `json:"response_time_hours"`
	EngagementScore    int        `json:"engagement_score"`
	MessageCount       int        `json:"message_count"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	AnalyzedAt         time.Time  `json:"analyzed_at"`
}

type AnalysisResponse struct {
	Success      bool                `json:"success"`
	Context      ConversationContext `json:"context"`
	ErrorMessage string              `json:"error,omitempty"`
}
