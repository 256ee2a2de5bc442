package dto

type AskRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question" validate:"required"`
}

// AskResponse is the answer payload. Status returns the same shape, and it
// doubles as the websocket push payload so connected clients see exactly
// what a poll would return. Source is "bot" for automated answers, "human"
// for moderator replies and "system" for service messages.
type AskResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
	Status    string `json:"status"`
	URL       string `json:"url,omitempty"`
	LinkLabel string `json:"link_label,omitempty"`
	Source    string `json:"source"`
}
