package analysis

import (
	"time"

	"pingchain/types"
)

const (
	day = 24 * time.Hour

	// A reply gap above this is a new conversation, not a slow reply.
	ConversationBreak = 7 * day
)

// ConversationHealth maps loop count and recency to a band. Bands are checked in order and
// the first match wins.
func ConversationHealth(openLoops int, lastMessageAge time.Duration) types.Health {
	switch {
	case openLoops == 0 && lastMessageAge < day:
		return types.HealthExcellent
	case openLoops <= 1 && lastMessageAge < 3*day:
		return types.HealthGood
	case openLoops <= 2 && lastMessageAge < 7*day:
		return types.HealthNeedsAttention
	default:
		return types.HealthAtRisk
	}
}

// ResponseTime averages, in hours, the gap between consecutive messages from different
// parties. Gaps longer than ConversationBreak are skipped.
func ResponseTime(messages []types.Message) float64 {
	ordered := sortedByTime(messages)

	var total time.Duration
	var pairs int
	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if normalizeSender(prev.Sender) == normalizeSender(cur.Sender) {
			continue
		}
		gap := cur.CreatedAt.Sub(prev.CreatedAt)
		if gap > ConversationBreak {
			continue
		}
		total += gap
		pairs++
	}
	if pairs == 0 {
		return 0
	}
	return total.Hours() / float64(pairs)
}

// EngagementScore is a 0-100 heuristic: loops cost 10 points each, staleness costs up to 30
// and very recent activity earns up to 10.
func EngagementScore(openLoops int, lastMessageAge time.Duration) int {
	score := 100 - 10*openLoops

	switch {
	case lastMessageAge > 7*day:
		score -= 30
	case lastMessageAge > 3*day:
		score -= 15
	}

	switch {
	case lastMessageAge < time.Hour:
		score += 10
	case lastMessageAge < day:
		score += 5
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// LastMessageAge is zero for an empty history.
func LastMessageAge(messages []types.Message, now time.Time) (time.Duration, *time.Time) {
	if len(messages) == 0 {
		return 0, nil
	}
	last := messages[0].CreatedAt
	for _, m := range messages[1:] {
		if m.CreatedAt.After(last) {
			last = m.CreatedAt
		}
	}
	age := now.Sub(last)
	if age < 0 {
		age = 0
	}
	return age, &last
}

// BuildContext runs the full analysis pipeline for one contact.
func BuildContext(contactID string, messages []types.Message, now time.Time) types.ConversationContext {
	loops := DetectOpenLoops(messages, now)
	age, lastAt := LastMessageAge(messages, now)

	return types.ConversationContext{
		ContactID:          contactID,
		OpenLoops:          loops,
		PendingResponses:   PendingResponses(loops),
		ConversationHealth: ConversationHealth(len(loops), age),
		ResponseTime:       ResponseTime(messages),
		EngagementScore:    EngagementScore(len(loops), age),
		MessageCount:       len(messages),
		LastMessageAt:      lastAt,
		AnalyzedAt:         now,
	}
}
