package routes

import (
	"net/http"

	"pingchain/handlers"
)

// RegisterContactRoutes registers contact CRUD routes
func RegisterContactRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	handle(mux, auth, "POST /api/contacts", h.CreateContact)
	handle(mux, auth, "GET /api/contacts", h.GetContacts)
	handle(mux, auth, "GET /api/contacts/{id}", h.GetContact)
	handle(mux, auth, "PUT /api/contacts/{id}", h.UpdateContact)
	handle(mux, auth, "DELETE /api/contacts/{id}", h.DeleteContact)
}

// RegisterMessageRoutes registers message routes
func RegisterMessageRoutes(mux *http.ServeMux, h *handlers.Handler, auth Protect) {
	handle(mux, auth, "POST /api/messages", h.CreateMessage)
	handle(mux, auth, "PATCH /api/messages/{id}/status", h.UpdateMessageStatus)
	handle(mux, auth, "GET /api/contacts/{id}/messages", h.GetContactMessages)
}
