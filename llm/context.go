package llm

import "pingchain/types"

const (
	maxPromptMessages = 10
	maxPromptChars    = 2000
)

// recentMessages keeps the newest messages that fit in both limits, oldest first.
func recentMessages(msgs []types.Message, maxCount, maxChars int) []types.Message {
	if len(msgs) == 0 {
		return nil
	}

	start := len(msgs)
	total := 0
	for i := len(msgs) - 1; i >= 0 && len(msgs)-i <= maxCount; i-- {
		total += len(msgs[i].Content)
		if total > maxChars && start < len(msgs) {
			break
		}
		start = i
	}
	return msgs[start:]
}
