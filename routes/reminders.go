package routes

import (
	"net/http"

	"pingchain/handlers"
)

// RegisterReminderRoutes registers all reminder-related routes
func RegisterReminderRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	handle(mux, auth, "POST /api/reminders", h.ProcessReminders)
	handle(mux, auth, "GET /api/reminders", h.GetReminders)
	handle(mux, auth, "DELETE /api/reminders", h.ClearReminders)
	handle(mux, auth, "POST /api/reminders/create", h.CreateReminder)
	handle(mux, auth, "PATCH /api/reminders/{id}", h.UpdateReminder)
	handle(mux, auth, "DELETE /api/reminders/{id}", h.DismissReminder)
	handle(mux, auth, "POST /api/reminders/{id}/sent", h.MarkReminderSent)
	handle(mux, auth, "POST /api/reminders/{id}/snooze", h.SnoozeReminder)
}
