package llm

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"pingchain/types"
)

type bucket struct {
	keywords []string
	reply    string
}

// Checked in order against the last message.
var buckets = []bucket{
	{[]string{"meet", "meeting", "call", "schedule"}, "That works for me. What time suits you best?"},
	{[]string{"project", "task", "deadline", "deliverable"}, "Thanks for the update on the project. I'll take a look and get back to you shortly."},
	{[]string{"weekend", "saturday", "sunday"}, "Sounds fun! Let me check my plans for the weekend and I'll let you know."},
	{[]string{"thanks", "thank you", "appreciate"}, "You're welcome! Happy to help anytime."},
}

var tonePools = map[types.Tone][]string{
	types.ToneFriendly: {
		"Hey %s! Just wanted to check in and see how you're doing.",
		"Hi %s, sorry for the slow reply! How have things been?",
		"Hey %s, thinking of you. Let's catch up soon!",
	},
	types.ToneProfessional: {
		"Hi %s, following up on our last conversation. Please let me know if you need anything from me.",
		"Hello %s, I wanted to circle back on this. Do you have a moment to discuss next steps?",
		"Hi %s, thank you for your patience. I'll have an update for you shortly.",
	},
	types.ToneCasual: {
		"Hey %s, what's up?",
		"Yo %s, sorry I missed this! Still on?",
		"Hey %s! Catch up soon?",
	},
}

func normalizeTone(t types.Tone) types.Tone {
	switch t {
	case types.ToneFriendly, types.ToneProfessional, types.ToneCasual:
		return t
	case types.ToneFormal:
		return types.ToneProfessional
	default:
		return types.ToneFriendly
	}
}

// TemplateSuggester builds replies without any network call.
type TemplateSuggester struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewTemplateSuggester(seed int64) *TemplateSuggester {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TemplateSuggester{rnd: rand.New(rand.NewSource(seed))}
}

// Suggest matches the last message against the keyword buckets, else picks from the tone pool.
func (t *TemplateSuggester) Suggest(req types.SuggestionRequest) string {
	if n := len(req.PreviousMessages); n > 0 {
		last := strings.ToLower(req.PreviousMessages[n-1].Content)
		for _, b := range buckets {
			for _, kw := range b.keywords {
				if strings.Contains(last, kw) {
					return b.reply
				}
			}
		}
	}

	name := strings.TrimSpace(req.Contact)
	if name == "" {
		name = "there"
	}
	pool := tonePools[normalizeTone(req.Tone)]

	t.mu.Lock()
	i := t.rnd.Intn(len(pool))
	t.mu.Unlock()
	return fmt.Sprintf(pool[i], name)
}
