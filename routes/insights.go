package routes

import (
	"net/http"

	"pingchain/handlers"
)

// RegisterInsightRoutes registers analysis, memory, analytics and AI routes
func RegisterInsightRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	handle(mux, auth, "GET /api/contacts/{id}/analysis", h.AnalyzeContact)
	handle(mux, auth, "POST /api/contacts/{id}/memories", h.CreateMemory)
	handle(mux, auth, "GET /api/contacts/{id}/memories", h.GetMemories)
	handle(mux, auth, "GET /api/analytics", h.GetAnalytics)
	handle(mux, auth, "POST /api/ai/generate-message", h.GenerateMessage)
}

// RegisterPlatformRoutes registers platform sync routes
func RegisterPlatformRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	handle(mux, auth, "POST /api/platforms/sync", h.StartPlatformSync)
	handle(mux, auth, "DELETE /api/platforms/sync", h.StopPlatformSync)
}
