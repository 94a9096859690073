package routes

import (
	"net/http"

	"pingchain/handlers"
)

// Protect wraps a handler with authentication.
type Protect func(http.Handler) http.Handler

// RegisterAllRoutes registers all application routes
func RegisterAllRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	RegisterReminderRoutes(mux, h, auth)
	RegisterContactRoutes(mux, h, auth)
	RegisterMessageRoutes(mux, h, auth)
	RegisterInsightRoutes(mux, h, auth)
	RegisterPlatformRoutes(mux, h, auth)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
}

func handle(mux *http.ServeMux, auth Protect, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, auth(fn))
}
