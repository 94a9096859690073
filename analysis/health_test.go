package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchain/types"
)

func TestConversationHealthBands(t *testing.T) {
	cases := []struct {
		name  string
		loops int
		age   time.Duration
		want  types.Health
	}{
		{"fresh and clear", 0, time.Hour, types.HealthExcellent},
		{"exactly one day", 0, 24 * time.Hour, types.HealthGood},
		{"one loop recent", 1, time.Hour, types.HealthGood},
		{"exactly three days", 1, 72 * time.Hour, types.HealthNeedsAttention},
		{"two loops recent", 2, time.Hour, types.HealthNeedsAttention},
		{"exactly seven days", 2, 7 * 24 * time.Hour, types.HealthAtRisk},
		{"three loops", 3, time.Minute, types.HealthAtRisk},
		{"clear but stale", 0, 30 * 24 * time.Hour, types.HealthAtRisk},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ConversationHealth(tc.loops, tc.age))
		})
	}
}

func TestEngagementScore(t *testing.T) {
	assert.Equal(t, 100, EngagementScore(0, 10*time.Minute))
	assert.Equal(t, 95, EngagementScore(1, 2*time.Hour))
	assert.Equal(t, 90, EngagementScore(1, 30*time.Hour))
	assert.Equal(t, 65, EngagementScore(2, 4*24*time.Hour))
	assert.Equal(t, 70, EngagementScore(0, 8*24*time.Hour))
}

func TestEngagementScoreClampsAtZero(t *testing.T) {
	messages := []types.Message{}
	for i := 0; i < 15; i++ {
		messages = append(messages, msg("m"+string(rune('a'+i)), types.SenderContact, "are you there?", 30*24*time.Hour+time.Duration(i)*time.Minute))
	}

	ctx := BuildContext("c1", messages, now)
	require.Len(t, ctx.OpenLoops, 15)
	assert.Equal(t, 0, ctx.EngagementScore)
	assert.Equal(t, types.HealthAtRisk, ctx.ConversationHealth)
}

func TestResponseTimeSkipsConversationBreaks(t *testing.T) {
	messages := []types.Message{
		msg("m1", types.SenderContact, "hi", 30*24*time.Hour),
		msg("m2", types.SenderUser, "hello again", 10*24*time.Hour), // 20 day gap, skipped
		msg("m3", types.SenderContact, "how are you", 10*24*time.Hour-2*time.Hour),
		msg("m4", types.SenderContact, "still there", 10*24*time.Hour-3*time.Hour), // same sender
		msg("m5", types.SenderUser, "yes", 10*24*time.Hour-7*time.Hour),
	}

	// pairs: m2->m3 (2h), m4->m5 (4h)
	assert.InDelta(t, 3.0, ResponseTime(messages), 1e-9)
	assert.Equal(t, 0.0, ResponseTime(nil))
}

func TestBuildContextEmptyHistory(t *testing.T) {
	require.NotPanics(t, func() {
		ctx := BuildContext("c1", nil, now)
		assert.Equal(t, types.HealthExcellent, ctx.ConversationHealth)
		assert.Equal(t, 100, ctx.EngagementScore)
		assert.Empty(t, ctx.OpenLoops)
		assert.Empty(t, ctx.PendingResponses)
		assert.Nil(t, ctx.LastMessageAt)
		assert.Zero(t, ctx.MessageCount)
	})
}

func TestContextCacheHonorsTTLAndInputs(t *testing.T) {
	cache, err := NewContextCache(8, time.Minute)
	require.NoError(t, err)

	messages := []types.Message{msg("m1", types.SenderContact, "lunch?", time.Hour)}

	first := cache.Get("c1", messages, now)
	second := cache.Get("c1", messages, now.Add(30*time.Second))
	assert.Equal(t, first.AnalyzedAt, second.AnalyzedAt)

	third := cache.Get("c1", messages, now.Add(2*time.Minute))
	assert.Equal(t, now.Add(2*time.Minute), third.AnalyzedAt)

	changed := append(messages, msg("m2", types.SenderUser, "sure", 0))
	fourth := cache.Get("c1", changed, now.Add(2*time.Minute+time.Second))
	assert.Empty(t, fourth.OpenLoops)

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
}
