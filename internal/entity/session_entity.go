package entity

import (
	"time"
)

// Session status values. bot -> pending -> human is the escalation path;
// a moderator release moves a session back to bot for a fresh turn.
const (
	SessionStatusBot     = "bot"
	SessionStatusPending = "pending"
	SessionStatusHuman   = "human"
)

// Answer sources reported to clients: bot for any automated answer, human
// for a moderator reply, system for service messages such as the
// awaiting-review text. The resolution tier that produced a bot answer is
// recorded separately in SessionMeta.
const (
	AnswerSourceBot    = "bot"
	AnswerSourceHuman  = "human"
	AnswerSourceSystem = "system"
)

// SessionMeta is the audit payload stored alongside the session row:
// the suppressed draft's confidence, link and the escalation reasons.
type SessionMeta struct {
	Source     string   `json:"source,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
	URL        string   `json:"url,omitempty"`
	LinkLabel  string   `json:"link_label,omitempty"`
	Reasons    []string `json:"reasons,omitempty"`
}

type Session struct {
	SessionID     string
	Question      string
	BotResponse   *string
	HumanResponse *string
	Status        string
	Meta          SessionMeta
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}
