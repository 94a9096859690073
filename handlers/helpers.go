package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"pingchain/analysis"
	"pingchain/analytics"
	"pingchain/config"
	"pingchain/llm"
	"pingchain/middleware"
	"pingchain/platforms"
	"pingchain/reminders"
	"pingchain/store"
	"pingchain/types"
)

// Handler serves the HTTP API on top of the injected services.
type Handler struct {
	store       store.Store
	reminders   *reminders.Scheduler
	suggestions *llm.Generator
	analytics   *analytics.Service
	platforms   *platforms.Manager
	contexts    *analysis.ContextCache
	now         func() time.Time
}

type Dependencies struct {
	Store       store.Store
	Reminders   *reminders.Scheduler
	Suggestions *llm.Generator
	Analytics   *analytics.Service
	Platforms   *platforms.Manager
	Contexts    *analysis.ContextCache
	Now         func() time.Time
}

func New(d Dependencies) *Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Handler{
		store:       d.Store,
		reminders:   d.Reminders,
		suggestions: d.Suggestions,
		analytics:   d.Analytics,
		platforms:   d.Platforms,
		contexts:    d.Contexts,
		now:         d.Now,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, message string, status int) {
	resp := types.APIResponse{
		Success:      false,
		ErrorMessage: message,
	}
	writeJSON(w, status, resp)
}

// userID writes a 401 and returns false when the request carries no authenticated user.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		config.Logger.Debug("Failed to decode request JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// limitParam parses ?limit=, falling back to def when absent.
func limitParam(r *http.Request, def int) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return n, nil
}

// fail maps service errors to status codes. Unexpected errors are logged and hidden behind
// a generic message.
func fail(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, what+" not found", http.StatusNotFound)
	case errors.Is(err, reminders.ErrInvalidInput), errors.Is(err, platforms.ErrInvalidConfig):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, reminders.ErrInvalidTransition):
		writeError(w, err.Error(), http.StatusConflict)
	default:
		config.Logger.Errorf("Request failed (%s): %v", what, err)
		writeError(w, "Failed to process "+what, http.StatusInternalServerError)
	}
}
