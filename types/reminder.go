package types

import "time"

type ReminderType string

const (
	ReminderOverdue   ReminderType = "overdue"
	ReminderQuestion  ReminderType = "question"
	ReminderScheduled ReminderType = "scheduled"
	ReminderUrgent    ReminderType = "urgent"
)

func (t ReminderType) Valid() bool {
	switch t {
	case ReminderOverdue, ReminderQuestion, ReminderScheduled, ReminderUrgent:
		return true
	}
	return false
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type ReminderStatus string

const (
	ReminderPending ReminderStatus = "pending"
	ReminderSent    ReminderStatus = "sent"
)

type Reminder struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	ContactID    string         `json:"contact_id"`
	ContactName  string         `json:"contact_name"`
	Message      string         `json:"message"`
	Type         ReminderType   `json:"type"`
	Priority     Priority       `json:"priority"`
	CreatedAt    time.Time      `json:"created_at"`
	ScheduledFor *time.Time     `json:"scheduled_for,omitempty"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	Status       ReminderStatus `json:"status"`
}

// ReminderPatch is the store-level update; nil means unchanged. Status and SentAt are set
// only by the reminder state transitions.
type ReminderPatch struct {
	Message      *string         `json:"message,omitempty"`
	Priority     *Priority       `json:"priority,omitempty"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	Status       *ReminderStatus `json:"status,omitempty"`
}

func (p ReminderPatch) Empty() bool {
	return p.Message == nil && p.Priority == nil && p.ScheduledFor == nil && p.SentAt == nil && p.Status == nil
}

// Apply copies the set fields of the patch onto r.
func (p ReminderPatch) Apply(r *Reminder) {
	if p.Message != nil {
		r.Message = *p.Message
	}
	if p.Priority != nil {
		r.Priority = *p.Priority
	}
	if p.ScheduledFor != nil {
		t := *p.ScheduledFor
		r.ScheduledFor = &t
	}
	if p.SentAt != nil {
		t := *p.SentAt
		r.SentAt = &t
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}

// UpdateReminderRequest is the body of PATCH /api/reminders/{id}. Status and SentAt are
// decoded only so a request carrying them can be rejected.
type UpdateReminderRequest struct {
	Message      *string         `json:"message,omitempty"`
	Priority     *Priority       `json:"priority,omitempty"`
	ScheduledFor *time.Time      `json:"scheduled_for,omitempty"`
	SentAt       *time.Time      `json:"sent_at,omitempty"`
	Status       *ReminderStatus `json:"status,omitempty"`
}

func (u UpdateReminderRequest) Patch() ReminderPatch {
	return ReminderPatch{Message: u.Message, Priority: u.Priority, ScheduledFor: u.ScheduledFor}
}

type CreateReminderRequest struct {
	ContactID    string       `json:"contact_id"`
	ContactName  string       `json:"contact_name"`
	Message      string       `json:"message"`
	Type         ReminderType `json:"type"`
	Priority     Priority     `json:"priority"`
	ScheduledFor *time.Time   `json:"scheduled_for,omitempty"`
}

type ProcessRemindersRequest struct {
	OpenLoops []OpenLoop `json:"openLoops"`
}

type ProcessRemindersResponse struct {
	Success        bool     `json:"success"`
	ProcessedLoops int      `json:"processedLoops"`
	ReminderIDs    []string `json:"reminderIds,omitempty"`
	ErrorMessage   string   `json:"error,omitempty"`
}

type SnoozeReminderRequest struct {
	Until *time.Time `json:"until,omitempty"`
	// Minutes is used when Until is absent.
	Minutes int `json:"minutes,omitempty"`
}

type ReminderResponse struct {
	Success      bool     `json:"success"`
	Reminder     Reminder `json:"reminder,omitempty"`
	ErrorMessage string   `json:"error,omitempty"`
}

type GetRemindersResponse struct {
	Success      bool       `json:"success"`
	Reminders    []Reminder `json:"reminders"`
	Total        int        `json:"total"`
	ErrorMessage string     `json:"error,omitempty"`
}
