package types

type TimeRange string

const (
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
	TimeRange90d TimeRange = "90d"
	TimeRange1y  TimeRange = "1y"
)

type DailyActivity struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Sent     int    `json:"sent"`
	Received int    `json:"received"`
}

type AnalyticsMetrics struct {
	TimeRange         TimeRange        `json:"time_range"`
	TotalMessages     int              `json:"total_messages"`
	MessagesSent      int              `json:"messages_sent"`
	MessagesReceived  int              `json:"messages_received"`
	AIGenerated       int              `json:"ai_generated"`
	ActiveContacts    int              `json:"active_contacts"`
	TotalContacts     int              `json:"total_contacts"`
	AvgResponseTime   float64          `json:"avg_response_time_hours"`
	OpenLoops         int              `json:"open_loops"`
	PendingResponses  int              `json:"pending_responses"`
	RemindersPending  int              `json:"reminders_pending"`
	RemindersSent     int              `json:"reminders_sent"`
	PlatformBreakdown map[Platform]int `json:"platform_breakdown"`
	DailyActivity     []DailyActivity  `json:"daily_activity"`
}

type AnalyticsResponse struct {
	Success      bool             `json:"success"`
	Metrics      AnalyticsMetrics `json:"metrics"`
	ErrorMessage string           `json:"error,omitempty"`
}
