// Package formatter shapes raw answers into the house style: greeting,
// short paragraphs, closing prompt. Format is idempotent so answers that
// are re-read from storage and formatted again come out unchanged.
package formatter

import (
	"regexp"
	"strings"
)

const (
	maxSentencesPerParagraph = 3
	// Question-mark sentences end their paragraph early so rhetorical
	// questions get room to breathe.
	maxSentencesAfterQuestion = 1
)

var (
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]+|[^.!?]+$`)
	bulletRe   = regexp.MustCompile(`(?m)^\s*[-*•]\s+`)
	wsRe       = regexp.MustCompile(`[ \t]+`)
)

type Formatter struct {
	greeting string
	closing  string
}

func New(greeting, closing string) *Formatter {
	return &Formatter{greeting: greeting, closing: closing}
}

// Format renders an answer in the house style. withGreeting is set for
// bot-resolved answers only; human replies keep their author's opening.
func (f *Formatter) Format(answer string, withGreeting bool) string {
	body := strings.TrimSpace(answer)

	// Strip any greeting/closing from a previous pass first; this is what
	// makes the function idempotent.
	body = strings.TrimSpace(strings.TrimPrefix(body, f.greeting))
	body = strings.TrimSpace(strings.TrimSuffix(body, f.closing))

	body = flattenBullets(body)
	paragraphs := regroup(splitSentences(body))

	var out []string
	if withGreeting {
		out = append(out, f.greeting)
	}
	out = append(out, paragraphs...)
	out = append(out, f.closing)

	return strings.Join(out, "\n\n")
}

// flattenBullets turns list markers into plain sentences so the paragraph
// grouping below sees one continuous text.
func flattenBullets(s string) string {
	s = bulletRe.ReplaceAllString(s, "")
	return s
}

func splitSentences(s string) []string {
	// Paragraph breaks in the source are treated like any other sentence
	// boundary; the regrouping below decides the final layout.
	s = strings.ReplaceAll(s, "\n", " ")
	s = wsRe.ReplaceAllString(s, " ")

	raw := sentenceRe.FindAllString(s, -1)
	sentences := make([]string, 0, len(raw))
	for _, part := range raw {
		part = strings.TrimSpace(part)
		if part != "" {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// regroup packs sentences into paragraphs of at most three sentences,
// closing a paragraph early after a question.
func regroup(sentences []string) []string {
	var paragraphs []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = nil
		}
	}

	for _, sentence := range sentences {
		current = append(current, sentence)
		if strings.HasSuffix(sentence, "?") && len(current) >= maxSentencesAfterQuestion {
			flush()
			continue
		}
		if len(current) >= maxSentencesPerParagraph {
			flush()
		}
	}
	flush()

	return paragraphs
}
