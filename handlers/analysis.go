package handlers

import (
	"net/http"
	"strings"

	"pingchain/analysis"
	"pingchain/config"
	"pingchain/types"
)

const (
	analysisMessageLimit = 500
	defaultMemoryLimit   = 20
)

// AnalyzeContact returns the conversation context for a contact. Message read failures
// degrade to the context of an empty history.
func (h *Handler) AnalyzeContact(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	contactID := r.PathValue("id")
	if _, err := h.store.GetContact(r.Context(), uid, contactID); err != nil {
		fail(w, err, "contact")
		return
	}

	now := h.now()
	msgs, err := h.store.ListMessagesByContact(r.Context(), uid, contactID, analysisMessageLimit)
	if err != nil {
		config.Logger.WithField("contact_id", contactID).Warn("Failed to load messages for analysis: ", err)
		writeJSON(w, http.StatusOK, types.AnalysisResponse{Success: true, Context: analysis.BuildContext(contactID, nil, now)})
		return
	}

	var ctx types.ConversationContext
	if h.contexts != nil {
		ctx = h.contexts.Get(contactID, msgs, now)
	} else {
		ctx = analysis.BuildContext(contactID, msgs, now)
	}
	writeJSON(w, http.StatusOK, types.AnalysisResponse{Success: true, Context: ctx})
}

func (h *Handler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var entry types.MemoryEntry
	if !decode(w, r, &entry) {
		return
	}
	if strings.TrimSpace(entry.Content) == "" {
		writeError(w, "Missing memory content", http.StatusBadRequest)
		return
	}

	contactID := r.PathValue("id")
	if _, err := h.store.GetContact(r.Context(), uid, contactID); err != nil {
		fail(w, err, "contact")
		return
	}

	entry.ID = ""
	entry.UserID = uid
	entry.ContactID = contactID
	entry.CreatedAt = h.now()
	if err := h.store.AppendMemory(r.Context(), &entry); err != nil {
		fail(w, err, "memory")
		return
	}
	writeJSON(w, http.StatusCreated, types.MemoryResponse{Success: true, Memory: entry})
}

func (h *Handler) GetMemories(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	limit, err := limitParam(r, defaultMemoryLimit)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	contactID := r.PathValue("id")
	if _, err := h.store.GetContact(r.Context(), uid, contactID); err != nil {
		fail(w, err, "contact")
		return
	}

	entries, err := h.store.ListMemories(r.Context(), uid, contactID, limit)
	if err != nil {
		fail(w, err, "memories")
		return
	}
	writeJSON(w, http.StatusOK, types.GetMemoriesResponse{Success: true, Memories: entries})
}
