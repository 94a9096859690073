package handlers

import (
	"fmt"
	"net/http"
	"time"

	"pingchain/config"
	"pingchain/store"
	"pingchain/types"
)

// ownedReminder hides reminders of other users behind ErrNotFound.
func (h *Handler) ownedReminder(r *http.Request, uid string) (types.Reminder, error) {
	rem, err := h.reminders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return types.Reminder{}, err
	}
	if rem.UserID != uid {
		return types.Reminder{}, store.ErrNotFound
	}
	return rem, nil
}

// ProcessReminders turns detected open loops into reminders.
func (h *Handler) ProcessReminders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.ProcessRemindersRequest
	if !decode(w, r, &req) {
		return
	}

	contacts, err := h.store.ListContacts(r.Context(), uid)
	if err != nil {
		fail(w, err, "contacts")
		return
	}
	names := make(map[string]string, len(contacts))
	for _, c := range contacts {
		names[c.ID] = c.Name
	}
	for _, loop := range req.OpenLoops {
		if _, ok := names[loop.ContactID]; loop.ContactID != "" && !ok {
			config.Logger.WithField("contact_id", loop.ContactID).Debug("Open loop references an unknown contact")
			writeError(w, "contact not found", http.StatusNotFound)
			return
		}
	}

	res, err := h.reminders.ProcessOpenLoops(r.Context(), uid, req.OpenLoops, names)
	if err != nil {
		fail(w, err, "reminders")
		return
	}
	writeJSON(w, http.StatusOK, types.ProcessRemindersResponse{
		Success:        true,
		ProcessedLoops: res.Processed,
		ReminderIDs:    res.ReminderIDs,
	})
}

func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	status := types.ReminderStatus(r.URL.Query().Get("status"))
	if status != "" && status != types.ReminderPending && status != types.ReminderSent {
		writeError(w, "status must be pending or sent", http.StatusBadRequest)
		return
	}

	list, err := h.reminders.List(r.Context(), uid, status)
	if err != nil {
		fail(w, err, "reminders")
		return
	}
	writeJSON(w, http.StatusOK, types.GetRemindersResponse{Success: true, Reminders: list, Total: len(list)})
}

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.CreateReminderRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ContactID != "" {
		c, err := h.store.GetContact(r.Context(), uid, req.ContactID)
		if err != nil {
			fail(w, err, "contact")
			return
		}
		if req.ContactName == "" {
			req.ContactName = c.Name
		}
	}

	id, err := h.reminders.CreateReminder(r.Context(), uid, req)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	rem, err := h.reminders.Get(r.Context(), id)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	writeJSON(w, http.StatusCreated, types.ReminderResponse{Success: true, Reminder: rem})
}

func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.UpdateReminderRequest
	if !decode(w, r, &req) {
		return
	}

	rem, err := h.ownedReminder(r, uid)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	updated, err := h.reminders.Edit(r.Context(), rem.ID, req)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	writeJSON(w, http.StatusOK, types.ReminderResponse{Success: true, Reminder: updated})
}

func (h *Handler) MarkReminderSent(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rem, err := h.ownedReminder(r, uid)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	sent, err := h.reminders.MarkSent(r.Context(), rem.ID)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	writeJSON(w, http.StatusOK, types.ReminderResponse{Success: true, Reminder: sent})
}

func (h *Handler) SnoozeReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req types.SnoozeReminderRequest
	if !decode(w, r, &req) {
		return
	}
	var until time.Time
	switch {
	case req.Until != nil:
		until = *req.Until
	case req.Minutes > 0:
		until = h.now().Add(time.Duration(req.Minutes) * time.Minute)
	default:
		writeError(w, "Provide until or minutes", http.StatusBadRequest)
		return
	}

	rem, err := h.ownedReminder(r, uid)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	snoozed, err := h.reminders.Snooze(r.Context(), rem.ID, until)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	writeJSON(w, http.StatusOK, types.ReminderResponse{Success: true, Reminder: snoozed})
}

// DismissReminder deletes a pending reminder.
func (h *Handler) DismissReminder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	rem, err := h.ownedReminder(r, uid)
	if err != nil {
		fail(w, err, "reminder")
		return
	}
	if err := h.reminders.Dismiss(r.Context(), rem.ID); err != nil {
		fail(w, err, "reminder")
		return
	}
	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Reminder dismissed"})
}

func (h *Handler) ClearReminders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	n, err := h.reminders.ClearAllReminders(r.Context(), uid)
	if err != nil {
		fail(w, err, "reminders")
		return
	}
	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: fmt.Sprintf("Cleared %d reminder(s)", n)})
}
