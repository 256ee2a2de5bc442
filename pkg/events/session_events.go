package events

import (
	"strings"
	"time"
)

const SessionEscalatedType = "session.escalated"

// NewSessionEscalated builds the event raised when a visitor question is
// routed to human review.
func NewSessionEscalated(sessionID, question string, reasons []string) BaseEvent {
	return BaseEvent{
		Type: SessionEscalatedType,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"question":   question,
			"reasons":    strings.Join(reasons, ", "),
		},
		OccurredAt: time.Now(),
	}
}
