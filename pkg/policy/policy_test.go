package policy

import (
	"strings"
	"testing"
	"time"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		loc, _ := time.LoadLocation("Europe/London")
		return time.Date(2026, time.March, 3, hour, 30, 0, 0, loc)
	}
}

func TestEvaluateNoTriggers(t *testing.T) {
	p, err := New(Config{
		SensitiveKeywords:   []string{"bullying", "abuse", "harassment"},
		ConfidenceThreshold: 0.7,
	}, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}

	d := p.Evaluate("What time does school start?", 0.9)
	if d.Escalate {
		t.Errorf("unexpected escalation, reasons: %v", d.Reasons)
	}
}

func TestEvaluateSensitiveKeyword(t *testing.T) {
	p, err := New(Config{
		SensitiveKeywords:   []string{"bullying", "abuse", "harassment"},
		ConfidenceThreshold: 0.7,
	}, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		question string
		keyword  string
	}{
		{"My daughter is being bullied, what is your bullying policy?", "bullying"},
		{"How do you handle reports of ABUSE?", "abuse"},
		{"I want to report harassment at the school", "harassment"},
	}

	for _, tt := range tests {
		d := p.Evaluate(tt.question, 1.0)
		if !d.Escalate {
			t.Errorf("question %q should escalate", tt.question)
			continue
		}
		found := false
		for _, r := range d.Reasons {
			if r == ReasonSensitiveKeyword+":"+tt.keyword {
				found = true
			}
		}
		if !found {
			t.Errorf("question %q reasons = %v, want %s:%s", tt.question, d.Reasons, ReasonSensitiveKeyword, tt.keyword)
		}
	}
}

func TestEvaluateLowConfidence(t *testing.T) {
	p, err := New(Config{ConfidenceThreshold: 0.7}, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}

	d := p.Evaluate("Tell me about the history of the building", 0.42)
	if !d.Escalate {
		t.Fatal("low confidence should escalate")
	}
	if len(d.Reasons) != 1 || d.Reasons[0] != ReasonLowConfidence {
		t.Errorf("reasons = %v, want [%s]", d.Reasons, ReasonLowConfidence)
	}

	// Exactly at the threshold stays with the bot.
	d = p.Evaluate("Tell me about the history of the building", 0.7)
	if d.Escalate {
		t.Errorf("confidence at threshold should not escalate: %v", d.Reasons)
	}
}

func TestEvaluateStaffedWindow(t *testing.T) {
	cfg := Config{
		WindowEnabled:       true,
		WindowStart:         9,
		WindowEnd:           17,
		ConfidenceThreshold: 0.7,
	}

	inHours, err := New(cfg, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}
	d := inHours.Evaluate("What are the fees?", 1.0)
	if !d.Escalate || d.Reasons[0] != ReasonStaffedWindow {
		t.Errorf("in-window evaluation = %+v, want staffed_window escalation", d)
	}

	// End hour is exclusive.
	atEnd, err := New(cfg, fixedClock(17))
	if err != nil {
		t.Fatal(err)
	}
	if d := atEnd.Evaluate("What are the fees?", 1.0); d.Escalate {
		t.Errorf("window end should be exclusive, got %v", d.Reasons)
	}

	// Disabled window never triggers regardless of the hour.
	cfg.WindowEnabled = false
	disabled, err := New(cfg, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}
	if d := disabled.Evaluate("What are the fees?", 1.0); d.Escalate {
		t.Errorf("disabled window should not escalate, got %v", d.Reasons)
	}
}

func TestEvaluateMultipleReasons(t *testing.T) {
	p, err := New(Config{
		WindowEnabled:       true,
		WindowStart:         9,
		WindowEnd:           17,
		SensitiveKeywords:   []string{"bullying"},
		ConfidenceThreshold: 0.7,
	}, fixedClock(10))
	if err != nil {
		t.Fatal(err)
	}

	d := p.Evaluate("bullying question", 0.1)
	if !d.Escalate {
		t.Fatal("should escalate")
	}
	if len(d.Reasons) != 3 {
		t.Errorf("reasons = %v, want all three triggers", d.Reasons)
	}
	joined := strings.Join(d.Reasons, ",")
	for _, want := range []string{ReasonStaffedWindow, ReasonSensitiveKeyword, ReasonLowConfidence} {
		if !strings.Contains(joined, want) {
			t.Errorf("reasons %v missing %s", d.Reasons, want)
		}
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	if _, err := New(Config{Timezone: "Not/AZone"}, nil); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
