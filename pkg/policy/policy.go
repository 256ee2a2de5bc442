// Package policy decides whether a visitor question goes to human review
// instead of being answered by the bot.
package policy

import (
	"fmt"
	"strings"
	"time"
)

const (
	ReasonStaffedWindow    = "staffed_window"
	ReasonSensitiveKeyword = "sensitive_keyword"
	ReasonLowConfidence    = "low_confidence"
)

type Config struct {
	// WindowEnabled gates the staffed-hours trigger. Off by default; the
	// review team opts in once they actually staff the console.
	WindowEnabled bool
	WindowStart   int // hour, inclusive
	WindowEnd     int // hour, exclusive
	Timezone      string

	SensitiveKeywords   []string
	ConfidenceThreshold float64
}

// Decision carries the verdict and the reasons that triggered it, which end
// up in the session audit trail and the moderator alert.
type Decision struct {
	Escalate bool
	Reasons  []string
}

type Policy struct {
	cfg Config
	loc *time.Location
	now func() time.Time
}

// New builds a policy. The clock is injected so the staffed-window trigger
// is testable at fixed instants.
func New(cfg Config, now func() time.Time) (*Policy, error) {
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/London"
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load policy timezone: %w", err)
	}
	if cfg.ConfidenceThreshold == 0 {
		cfg.ConfidenceThreshold = 0.7
	}
	if now == nil {
		now = time.Now
	}
	return &Policy{cfg: cfg, loc: loc, now: now}, nil
}

// Evaluate applies the three independent triggers: staffed window, sensitive
// keyword, retrieval confidence. Any one of them escalates.
func (p *Policy) Evaluate(question string, confidence float64) Decision {
	var reasons []string

	if p.cfg.WindowEnabled && p.inWindow() {
		reasons = append(reasons, ReasonStaffedWindow)
	}

	q := strings.ToLower(question)
	for _, kw := range p.cfg.SensitiveKeywords {
		if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
			reasons = append(reasons, ReasonSensitiveKeyword+":"+kw)
			break
		}
	}

	if confidence < p.cfg.ConfidenceThreshold {
		reasons = append(reasons, ReasonLowConfidence)
	}

	return Decision{Escalate: len(reasons) > 0, Reasons: reasons}
}

func (p *Policy) inWindow() bool {
	hour := p.now().In(p.loc).Hour()
	return hour >= p.cfg.WindowStart && hour < p.cfg.WindowEnd
}
