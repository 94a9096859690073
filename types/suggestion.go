package types

type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
)

type SuggestionRequest struct {
	Contact          string    `json:"contact"`
	PreviousMessages []Message `json:"previousMessages"`
	Tone             Tone      `json:"tone"`
	Context          string    `json:"context,omitempty"`
	UseAI            bool      `json:"useAI"`
}

type SuggestionSource string

const (
	SourceAI       SuggestionSource = "ai"
	SourceTemplate SuggestionSource = "template"
)

type SuggestionResponse struct {
	Success      bool             `json:"success"`
	Suggestion   string           `json:"suggestion"`
	Source       SuggestionSource `json:"source,omitempty"`
	ErrorMessage string           `json:"error,omitempty"`
}

type PlatformSyncRequest struct {
	Platform Platform          `json:"platform"`
	Config   map[string]string `json:"config"`
}

type PlatformSyncResponse struct {
	Success      bool     `json:"success"`
	Platform     Platform `json:"platform"`
	Running      bool     `json:"running"`
	ErrorMessage string   `json:"error,omitempty"`
}
