package handlers

import (
	"net/http"
	"strings"

	"pingchain/types"
)

func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var c types.Contact
	if !decode(w, r, &c) {
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		writeError(w, "Missing contact name", http.StatusBadRequest)
		return
	}
	if c.Platform == "" {
		c.Platform = types.PlatformManual
	}

	now := h.now()
	c.ID = ""
	c.UserID = uid
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := h.store.CreateContact(r.Context(), &c); err != nil {
		fail(w, err, "contact")
		return
	}
	writeJSON(w, http.StatusCreated, types.ContactResponse{Success: true, Contact: c})
}

func (h *Handler) GetContacts(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	contacts, err := h.store.ListContacts(r.Context(), uid)
	if err != nil {
		fail(w, err, "contacts")
		return
	}
	writeJSON(w, http.StatusOK, types.GetContactsResponse{Success: true, Contacts: contacts, Total: len(contacts)})
}

func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	c, err := h.store.GetContact(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		fail(w, err, "contact")
		return
	}
	writeJSON(w, http.StatusOK, types.ContactResponse{Success: true, Contact: c})
}

func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	existing, err := h.store.GetContact(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		fail(w, err, "contact")
		return
	}

	var in types.Contact
	if !decode(w, r, &in) {
		return
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		existing.Name = name
	}
	if in.Email != "" {
		existing.Email = in.Email
	}
	if in.Platform != "" {
		existing.Platform = in.Platform
	}
	if in.Handle != "" {
		existing.Handle = in.Handle
	}
	if in.Notes != "" {
		existing.Notes = in.Notes
	}
	existing.UpdatedAt = h.now()

	if err := h.store.UpdateContact(r.Context(), &existing); err != nil {
		fail(w, err, "contact")
		return
	}
	writeJSON(w, http.StatusOK, types.ContactResponse{Success: true, Contact: existing})
}

func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteContact(r.Context(), uid, r.PathValue("id")); err != nil {
		fail(w, err, "contact")
		return
	}
	writeJSON(w, http.StatusOK, types.DeleteResponse{Success: true, Message: "Contact deleted successfully"})
}
