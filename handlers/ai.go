package handlers

import (
	"net/http"
	"strings"

	"pingchain/analytics"
	"pingchain/types"
)

func (h *Handler) GenerateMessage(w http.ResponseWriter, r *http.Request) {
	if _, ok := userID(w, r); !ok {
		return
	}

	var req types.SuggestionRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Contact) == "" {
		writeError(w, "Missing contact", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.suggestions.Generate(r.Context(), req))
}

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	tr, err := analytics.ParseTimeRange(r.URL.Query().Get("timeRange"))
	if err != nil {
		writeError(w, "timeRange must be one of 7d, 30d, 90d, 1y", http.StatusBadRequest)
		return
	}

	m, err := h.analytics.Compute(r.Context(), uid, tr, h.now())
	if err != nil {
		fail(w, err, "analytics")
		return
	}
	writeJSON(w, http.StatusOK, types.AnalyticsResponse{Success: true, Metrics: m})
}
