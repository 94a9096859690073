package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pingchain/types"
)

func TestDetermineUrgencyKeywordIgnoresAge(t *testing.T) {
	for _, kw := range []string{"urgent", "ASAP", "Emergency", "important", "deadline", "critical"} {
		for _, age := range []time.Duration{0, time.Minute, 30 * time.Hour, 200 * time.Hour} {
			m := msg("m", types.SenderContact, "this is "+kw+" please", age)
			assert.Equal(t, types.UrgencyHigh, DetermineUrgency(m, now), "%s at %s", kw, age)
		}
	}
}

func TestDetermineUrgencyAgeBands(t *testing.T) {
	cases := []struct {
		age  time.Duration
		want types.Urgency
	}{
		{0, types.UrgencyLow},
		{24 * time.Hour, types.UrgencyLow},
		{24*time.Hour + time.Minute, types.UrgencyMedium},
		{48 * time.Hour, types.UrgencyMedium},
		{50 * time.Hour, types.UrgencyMedium},
		{72 * time.Hour, types.UrgencyMedium},
		{72*time.Hour + time.Minute, types.UrgencyHigh},
	}
	for _, tc := range cases {
		m := msg("m", types.SenderContact, "any update on this?", tc.age)
		assert.Equal(t, tc.want, DetermineUrgency(m, now), tc.age.String())
	}
}

func TestExtractContextPriorityOrder(t *testing.T) {
	cases := map[string]types.ConversationTopic{
		"Can we schedule a meeting about the project?": types.TopicMeeting,
		"How is the project going?":                    types.TopicWork,
		"Any plans for the weekend?":                   types.TopicPersonal,
		"Thanks so much!":                              types.TopicAppreciation,
		"Sorry I missed that":                          types.TopicApology,
		"hey":                                          types.TopicGeneral,
		"":                                             types.TopicGeneral,
	}
	for content, want := range cases {
		assert.Equal(t, want, ExtractContext(content), content)
	}
}
