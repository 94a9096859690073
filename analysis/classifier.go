package analysis

import (
	"strings"
	"time"

	"pingchain/types"
)

var urgentKeywords = []string{"urgent", "asap", "emergency", "important", "deadline", "critical"}

// Age bands for unanswered questions without an urgent keyword.
const (
	HighUrgencyAge   = 72 * time.Hour
	MediumUrgencyAge = 24 * time.Hour
)

// DetermineUrgency classifies a message. An urgent keyword wins regardless of age; otherwise
// the age band decides: over 72h is high, over 24h is medium, anything newer is low.
func DetermineUrgency(msg types.Message, now time.Time) types.Urgency {
	text := strings.ToLower(msg.Content)
	for _, kw := range urgentKeywords {
		if strings.Contains(text, kw) {
			return types.UrgencyHigh
		}
	}

	age := now.Sub(msg.CreatedAt)
	switch {
	case age > HighUrgencyAge:
		return types.UrgencyHigh
	case age > MediumUrgencyAge:
		return types.UrgencyMedium
	default:
		return types.UrgencyLow
	}
}

type topicRule struct {
	topic    types.ConversationTopic
	keywords []string
}

// Evaluated in order, first hit wins.
var topicRules = []topicRule{
	{types.TopicMeeting, []string{"meet", "meeting", "call", "schedule", "calendar", "appointment", "zoom", "lunch", "coffee"}},
	{types.TopicWork, []string{"project", "work", "deadline", "report", "client", "task", "proposal", "review", "invoice"}},
	{types.TopicPersonal, []string{"family", "weekend", "birthday", "vacation", "holiday", "party", "dinner", "kids", "health"}},
	{types.TopicAppreciation, []string{"thank", "thanks", "appreciate", "grateful"}},
	{types.TopicApology, []string{"sorry", "apolog", "my bad", "forgive"}},
}

// ExtractContext tags content with the first matching topic, or general.
func ExtractContext(content string) types.ConversationTopic {
	text := strings.ToLower(content)
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.topic
			}
		}
	}
	return types.TopicGeneral
}
