package llm

import (
	"fmt"
	"strings"

	"pingchain/types"
)

const suggestionInstructions = `You help people keep their conversations going. Write the next message the user could send to their contact.

GUIDELINES:
- Reply to what the contact actually said last, especially if they asked something
- Keep it short: one to three sentences, ready to send as-is
- Match the requested tone
- No greetings like "Dear" unless the tone is formal
- Do not wrap the message in quotes and do not add explanations`

// BuildSuggestionPrompt renders the request into a single prompt string.
func BuildSuggestionPrompt(req types.SuggestionRequest) string {
	sections := []string{strings.TrimSpace(suggestionInstructions)}

	contact := strings.TrimSpace(req.Contact)
	if contact == "" {
		contact = "your contact"
	}
	sections = append(sections, fmt.Sprintf("CONTACT:\n%s", contact))
	sections = append(sections, fmt.Sprintf("TONE:\n%s", normalizeTone(req.Tone)))

	if ctx := strings.TrimSpace(req.Context); ctx != "" {
		sections = append(sections, fmt.Sprintf("EXTRA CONTEXT FROM THE USER:\n%s", ctx))
	}

	history := recentMessages(req.PreviousMessages, maxPromptMessages, maxPromptChars)
	if len(history) > 0 {
		var b strings.Builder
		b.WriteString("RECENT CONVERSATION:\n")
		for _, m := range history {
			if m.Sender == types.SenderUser {
				b.WriteString("YOU: ")
			} else {
				b.WriteString("THEM: ")
			}
			b.WriteString(strings.TrimSpace(m.Content))
			b.WriteString("\n")
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	sections = append(sections, "YOUR MESSAGE:")
	return strings.Join(sections, "\n\n")
}
