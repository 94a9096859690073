// Package notify delivers reminder notifications to the user.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"pingchain/config"
	"pingchain/types"
)

type Notifier interface {
	Notify(ctx context.Context, r types.Reminder) error
}

// LogNotifier only writes the reminder to the log. Used when no email provider is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, r types.Reminder) error {
	config.Logger.WithFields(logrus.Fields{
		"reminder_id": r.ID,
		"user_id":     r.UserID,
		"contact_id":  r.ContactID,
		"type":        r.Type,
		"priority":    r.Priority,
	}).Info("Reminder due: ", r.Message)
	return nil
}

const resendBaseURL = "https://api.resend.com"

// Recipients maps user ids to the address their reminders are emailed to.
type Recipients map[string]string

// ResendNotifier sends reminder emails through the Resend API. Each reminder goes to the
// address registered for its owner; reminders of users without one are only logged.
type ResendNotifier struct {
	http       *resty.Client
	from       string
	recipients Recipients
	fallback   Notifier
}

func NewResendNotifier(apiKey, from string, recipients Recipients) *ResendNotifier {
	return &ResendNotifier{
		http: resty.New().
			SetBaseURL(resendBaseURL).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		from:       from,
		recipients: recipients,
		fallback:   LogNotifier{},
	}
}

// WithBaseURL points the notifier at another host, used by tests.
func (n *ResendNotifier) WithBaseURL(baseURL string) *ResendNotifier {
	n.http.SetBaseURL(baseURL)
	return n
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func (n *ResendNotifier) Notify(ctx context.Context, r types.Reminder) error {
	to := n.recipients[r.UserID]
	if to == "" {
		config.Logger.WithField("user_id", r.UserID).Debug("No email recipient for user, logging reminder")
		return n.fallback.Notify(ctx, r)
	}

	resp, err := n.http.R().
		SetContext(ctx).
		SetBody(resendEmail{
			From:    n.from,
			To:      []string{to},
			Subject: subject(r),
			Text:    r.Message,
		}).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("resend request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func subject(r types.Reminder) string {
	switch r.Type {
	case types.ReminderQuestion:
		return fmt.Sprintf("%s is waiting for your reply", r.ContactName)
	case types.ReminderOverdue:
		return fmt.Sprintf("Follow up with %s", r.ContactName)
	case types.ReminderUrgent:
		return fmt.Sprintf("Urgent: %s", r.ContactName)
	default:
		return fmt.Sprintf("Reminder: %s", r.ContactName)
	}
}
