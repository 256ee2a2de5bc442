package dto

import "time"

type PendingSessionResponse struct {
	SessionID  string    `json:"session_id"`
	Question   string    `json:"question"`
	Reasons    []string  `json:"reasons,omitempty"`
	Draft      *string   `json:"draft,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ReviewReplyRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
}

type ReviewReplyResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

type ReviewReleaseRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type ReviewReleaseResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}
