// Package analysis derives open loops, urgency, topic and conversation health from a
// contact's message history. Everything here is a pure function of its inputs.
package analysis

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"pingchain/types"
)

var questionKeywords = []string{
	"what do you think",
	"can you",
	"could you",
	"would you",
	"will you",
	"do you",
	"are you",
	"let me know",
	"when",
	"why",
	"how",
	"what",
	"where",
}

// IsQuestion reports whether content looks interrogative. It is a substring match with no
// tokenization, so "I don't know why" counts as a question.
func IsQuestion(content string) bool {
	text := strings.ToLower(strings.TrimSpace(content))
	if text == "" {
		return false
	}
	if strings.Contains(text, "?") {
		return true
	}
	for _, kw := range questionKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// sortedByTime returns a copy of messages ordered by creation time, oldest first.
func sortedByTime(messages []types.Message) []types.Message {
	out := make([]types.Message, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func normalizeSender(s types.Sender) types.Sender {
	if s == types.SenderUser {
		return types.SenderUser
	}
	return types.SenderContact
}

// DetectOpenLoops returns the questions that have not been followed by a message from the
// other party, oldest first.
func DetectOpenLoops(messages []types.Message, now time.Time) []types.OpenLoop {
	ordered := sortedByTime(messages)

	lastFrom := map[types.Sender]int{
		types.SenderUser:    -1,
		types.SenderContact: -1,
	}
	for i, msg := range ordered {
		lastFrom[normalizeSender(msg.Sender)] = i
	}

	loops := []types.OpenLoop{}
	for i, msg := range ordered {
		if !IsQuestion(msg.Content) {
			continue
		}
		askedBy := normalizeSender(msg.Sender)
		other := types.SenderContact
		if askedBy == types.SenderContact {
			other = types.SenderUser
		}
		if lastFrom[other] > i {
			continue
		}

		loops = append(loops, types.OpenLoop{
			ID:        loopID(msg, i),
			MessageID: msg.ID,
			ContactID: msg.ContactID,
			Question:  msg.Content,
			AskedBy:   askedBy,
			CreatedAt: msg.CreatedAt,
			Urgency:   DetermineUrgency(msg, now),
			Context:   ExtractContext(msg.Content),
		})
	}
	return loops
}

// PendingResponses filters loops down to those asked by the contact.
func PendingResponses(loops []types.OpenLoop) []types.OpenLoop {
	pending := []types.OpenLoop{}
	for _, l := range loops {
		if l.AskedBy == types.SenderContact {
			pending = append(pending, l)
		}
	}
	return pending
}

func loopID(msg types.Message, idx int) string {
	if msg.ID != "" {
		return "loop_" + msg.ID
	}
	return "loop_" + msg.CreatedAt.UTC().Format("20060102T150405") + "_" + strconv.Itoa(idx)
}
