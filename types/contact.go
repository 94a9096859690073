package types

import "time"

type Contact struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Platform  Platform  `json:"platform,omitempty"`
	Handle    string    `json:"handle,omitempty"` // slack user id, discord user id, phone number...
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ContactResponse struct {
	Success      bool    `json:"success"`
	Contact      Contact `json:"contact,omitempty"`
	ErrorMessage string  `json:"error,omitempty"`
}

type GetContactsResponse struct {
	Success      bool      `json:"success"`
	Contacts     []Contact `json:"contacts"`
	Total        int       `json:"total"`
	ErrorMessage string    `json:"error,omitempty"`
}

type DeleteResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
}

// APIResponse is the bare envelope used for errors.
type APIResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"error,omitempty"`
}
