package formatter

import (
	"strings"
	"testing"
)

const (
	testGreeting = "Hello! Thank you for contacting More House School."
	testClosing  = "Is there anything else I can help you with?"
)

func TestFormatAddsGreetingAndClosing(t *testing.T) {
	f := New(testGreeting, testClosing)

	got := f.Format("The school day starts at 8.30am.", true)

	if !strings.HasPrefix(got, testGreeting) {
		t.Errorf("formatted answer missing greeting: %q", got)
	}
	if !strings.HasSuffix(got, testClosing) {
		t.Errorf("formatted answer missing closing: %q", got)
	}
}

func TestFormatWithoutGreeting(t *testing.T) {
	f := New(testGreeting, testClosing)

	got := f.Format("Term starts on 4 September.", false)

	if strings.HasPrefix(got, testGreeting) {
		t.Errorf("greeting should be omitted: %q", got)
	}
	if !strings.HasSuffix(got, testClosing) {
		t.Errorf("closing should always be present: %q", got)
	}
}

func TestFormatIdempotent(t *testing.T) {
	f := New(testGreeting, testClosing)

	inputs := []string{
		"The school day starts at 8.30am. Registration closes at 8.40am. Lessons begin at 8.45am. The day ends at 4pm.",
		"- Bullet one about uniform.\n- Bullet two about games kit.",
		"Single sentence.",
		"Do you offer bursaries? Yes, means-tested bursaries are available. Apply via the registrar.",
	}

	for _, in := range inputs {
		once := f.Format(in, true)
		twice := f.Format(once, true)
		if once != twice {
			t.Errorf("Format not idempotent:\nfirst:  %q\nsecond: %q", once, twice)
		}
	}
}

func TestFormatParagraphGrouping(t *testing.T) {
	f := New(testGreeting, testClosing)

	// Five sentences should land in a paragraph of three and one of two.
	got := f.Format("One. Two. Three. Four. Five.", false)

	paragraphs := strings.Split(got, "\n\n")
	// body paragraphs plus the closing
	if len(paragraphs) != 3 {
		t.Fatalf("got %d paragraphs, want 3: %q", len(paragraphs), got)
	}
	if paragraphs[0] != "One. Two. Three." {
		t.Errorf("first paragraph = %q", paragraphs[0])
	}
	if paragraphs[1] != "Four. Five." {
		t.Errorf("second paragraph = %q", paragraphs[1])
	}
}

func TestFormatQuestionEndsParagraph(t *testing.T) {
	f := New(testGreeting, testClosing)

	got := f.Format("Would you like a tour? We run open mornings every term.", false)

	paragraphs := strings.Split(got, "\n\n")
	if paragraphs[0] != "Would you like a tour?" {
		t.Errorf("question should close its paragraph, got %q", paragraphs[0])
	}
}

func TestFormatFlattensBullets(t *testing.T) {
	f := New(testGreeting, testClosing)

	got := f.Format("- First point.\n- Second point.\n* Third point.", false)

	if strings.Contains(got, "- ") || strings.Contains(got, "* ") {
		t.Errorf("bullet markers survived formatting: %q", got)
	}
	for _, want := range []string{"First point.", "Second point.", "Third point."} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}
