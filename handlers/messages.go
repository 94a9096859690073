package handlers

import (
	"net/http"
	"strings"

	"pingchain/types"
)

const defaultMessageLimit = 100

func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var in types.CreateMessageRequest
	if !decode(w, r, &in) {
		return
	}
	if in.ContactID == "" || strings.TrimSpace(in.Content) == "" {
		writeError(w, "Missing contact_id or content", http.StatusBadRequest)
		return
	}
	if in.Sender == "" {
		in.Sender = types.SenderUser
	}
	if in.Sender != types.SenderUser && in.Sender != types.SenderContact {
		writeError(w, "sender must be user or contact", http.StatusBadRequest)
		return
	}

	if _, err := h.store.GetContact(r.Context(), uid, in.ContactID); err != nil {
		fail(w, err, "contact")
		return
	}

	msg := types.Message{
		ContactID:   in.ContactID,
		UserID:      uid,
		Sender:      in.Sender,
		Content:     in.Content,
		Platform:    in.Platform,
		Status:      types.MessageStatusSent,
		CreatedAt:   in.CreatedAt,
		AIGenerated: in.AIGenerated,
	}
	if msg.Platform == "" {
		msg.Platform = types.PlatformManual
	}
	if msg.Sender == types.SenderContact {
		msg.Status = types.MessageStatusReceived
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = h.now()
	}

	if err := h.store.AppendMessage(r.Context(), &msg); err != nil {
		fail(w, err, "message")
		return
	}
	writeJSON(w, http.StatusCreated, types.MessageResponse{Success: true, Message: msg})
}

func (h *Handler) GetContactMessages(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit, err := limitParam(r, defaultMessageLimit)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	contactID := r.PathValue("id")
	if _, err := h.store.GetContact(r.Context(), uid, contactID); err != nil {
		fail(w, err, "contact")
		return
	}

	msgs, err := h.store.ListMessagesByContact(r.Context(), uid, contactID, limit)
	if err != nil {
		fail(w, err, "messages")
		return
	}
	writeJSON(w, http.StatusOK, types.GetMessagesResponse{Success: true, Messages: msgs, Total: len(msgs)})
}

func (h *Handler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var in types.UpdateMessageStatusRequest
	if !decode(w, r, &in) {
		return
	}
	if !in.Status.Valid() {
		writeError(w, "Invalid message status", http.StatusBadRequest)
		return
	}

	msg, err := h.store.UpdateMessageStatus(r.Context(), uid, r.PathValue("id"), in.Status)
	if err != nil {
		fail(w, err, "message")
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Success: true, Message: msg})
}
