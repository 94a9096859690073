// Package analytics aggregates a user's messaging activity over a time range.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pingchain/analysis"
	"pingchain/store"
	"pingchain/types"
)

const dateLayout = "2006-01-02"

// ParseTimeRange maps the query value to a TimeRange, defaulting to 30 days.
func ParseTimeRange(v string) (types.TimeRange, error) {
	switch tr := types.TimeRange(v); tr {
	case "":
		return types.TimeRange30d, nil
	case types.TimeRange7d, types.TimeRange30d, types.TimeRange90d, types.TimeRange1y:
		return tr, nil
	default:
		return "", fmt.Errorf("unknown time range %q", v)
	}
}

func rangeStart(tr types.TimeRange, now time.Time) time.Time {
	switch tr {
	case types.TimeRange7d:
		return now.AddDate(0, 0, -7)
	case types.TimeRange90d:
		return now.AddDate(0, 0, -90)
	case types.TimeRange1y:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -30)
	}
}

type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Compute reads contacts, messages and reminders one after another and aggregates them.
func (s *Service) Compute(ctx context.Context, userID string, tr types.TimeRange, now time.Time) (types.AnalyticsMetrics, error) {
	m := types.AnalyticsMetrics{
		TimeRange:         tr,
		PlatformBreakdown: map[types.Platform]int{},
		DailyActivity:     []types.DailyActivity{},
	}

	contacts, err := s.store.ListContacts(ctx, userID)
	if err != nil {
		return m, fmt.Errorf("failed to list contacts: %w", err)
	}
	m.TotalContacts = len(contacts)

	messages, err := s.store.ListMessagesSince(ctx, userID, rangeStart(tr, now))
	if err != nil {
		return m, fmt.Errorf("failed to list messages: %w", err)
	}

	byContact := map[string][]types.Message{}
	daily := map[string]*types.DailyActivity{}
	for _, msg := range messages {
		m.TotalMessages++
		if msg.Sender == types.SenderUser {
			m.MessagesSent++
		} else {
			m.MessagesReceived++
		}
		if msg.AIGenerated {
			m.AIGenerated++
		}
		if msg.Platform != "" {
			m.PlatformBreakdown[msg.Platform]++
		}

		day := msg.CreatedAt.UTC().Format(dateLayout)
		d, ok := daily[day]
		if !ok {
			d = &types.DailyActivity{Date: day}
			daily[day] = d
		}
		if msg.Sender == types.SenderUser {
			d.Sent++
		} else {
			d.Received++
		}

		byContact[msg.ContactID] = append(byContact[msg.ContactID], msg)
	}
	m.ActiveContacts = len(byContact)

	var total float64
	var withReplies int
	for _, msgs := range byContact {
		if rt := analysis.ResponseTime(msgs); rt > 0 {
			total += rt
			withReplies++
		}
		loops := analysis.DetectOpenLoops(msgs, now)
		m.OpenLoops += len(loops)
		m.PendingResponses += len(analysis.PendingResponses(loops))
	}
	if withReplies > 0 {
		m.AvgResponseTime = total / float64(withReplies)
	}

	for _, d := range daily {
		m.DailyActivity = append(m.DailyActivity, *d)
	}
	sort.Slice(m.DailyActivity, func(i, j int) bool { return m.DailyActivity[i].Date < m.DailyActivity[j].Date })

	reminders, err := s.store.ListReminders(ctx, userID, "")
	if err != nil {
		return m, fmt.Errorf("failed to list reminders: %w", err)
	}
	for _, r := range reminders {
		switch r.Status {
		case types.ReminderPending:
			m.RemindersPending++
		case types.ReminderSent:
			if r.SentAt == nil || !r.SentAt.Before(rangeStart(tr, now)) {
				m.RemindersSent++
			}
		}
	}

	return m, nil
}
