// Package resolve runs the tiered question pipeline: curated exact match,
// fuzzy match, guarded patterns, then semantic retrieval with generation.
package resolve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"school-concierge-be/internal/constant"
	"school-concierge-be/internal/entity"
	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/llm"
	"school-concierge-be/pkg/vectorindex"
)

// Source labels reported with every answer so clients and the audit trail
// can tell which tier produced it.
const (
	SourceStatic    = "static"
	SourceFuzzy     = "fuzzy"
	SourcePattern   = "pattern"
	SourceRetrieval = "retrieval"
)

const DefaultTopK = 20

// Guarded prefixes: specific-figure questions the bot must not answer from
// generation, because numbers go stale faster than the knowledge base.
var guardedPrefixes = []string{"how many", "how much"}

// Result is a resolved draft answer before formatting and escalation policy.
type Result struct {
	Answer     string
	Link       string
	Label      string
	Source     string
	Confidence float64
}

type Resolver struct {
	table    *answers.Table
	index    *vectorindex.Index
	embedder embedding.EmbeddingProvider
	llm      llm.LLMProvider
	topK     int
	now      func() time.Time
}

func New(
	table *answers.Table,
	index *vectorindex.Index,
	embedder embedding.EmbeddingProvider,
	llmProvider llm.LLMProvider,
	topK int,
	now func() time.Time,
) *Resolver {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if now == nil {
		now = time.Now
	}
	return &Resolver{
		table:    table,
		index:    index,
		embedder: embedder,
		llm:      llmProvider,
		topK:     topK,
		now:      now,
	}
}

// Resolve walks the tiers in order and stops at the first that produces an
// answer. The first three tiers never touch the network.
func (r *Resolver) Resolve(ctx context.Context, question string) (*Result, error) {
	// Tier 1: exact curated match
	if m, ok := r.table.ExactMatch(question); ok {
		return &Result{
			Answer:     m.Answer,
			Link:       m.Link,
			Label:      m.Label,
			Source:     SourceStatic,
			Confidence: 1.0,
		}, nil
	}

	// Tier 2: fuzzy curated match, first key over the threshold
	if m, ok := r.table.FuzzyMatch(question); ok {
		return &Result{
			Answer:     m.Answer,
			Link:       m.Link,
			Label:      m.Label,
			Source:     SourceFuzzy,
			Confidence: 1.0,
		}, nil
	}

	// Tier 3: guarded patterns
	if isGuarded(question) {
		return &Result{
			Answer:     constant.NumericGuardMessage,
			Source:     SourcePattern,
			Confidence: 1.0,
		}, nil
	}

	// Tier 4: semantic retrieval + generation
	return r.retrieve(ctx, question)
}

func isGuarded(question string) bool {
	q := answers.Normalize(question)
	for _, prefix := range guardedPrefixes {
		if strings.HasPrefix(q, prefix) {
			return true
		}
	}
	return false
}

func (r *Resolver) retrieve(ctx context.Context, question string) (*Result, error) {
	embedRes, err := r.embedder.Generate(question, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("%w: embed question: %v", entity.ErrRetrievalFailure, err)
	}

	hits := r.index.TopK(embedRes.Embedding.Values, r.topK)
	if len(hits) == 0 {
		// Empty knowledge base: admit it and let the confidence trigger
		// hand the question to a human.
		return &Result{
			Answer:     constant.NoRelevantAnswerMessage,
			Source:     SourceRetrieval,
			Confidence: 0,
		}, nil
	}

	confidence := hits[0].Score

	var contextBlock strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&contextBlock, "--- EXCERPT %d ---\n%s\n\n", i+1, hit.Document.Text)
	}

	system := fmt.Sprintf(
		constant.ReceptionistSystemPromptV1,
		r.now().Format("2 January 2006"),
		constant.NoRelevantAnswerMessage,
	) + contextBlock.String()

	history := []llm.Message{
		{Role: constant.ChatMessageRoleSystem, Content: system},
		{Role: constant.ChatMessageRoleUser, Content: question},
	}

	answer, err := r.llm.Chat(ctx, history, llm.WithTemperature(0.2))
	if err != nil {
		return nil, fmt.Errorf("%w: generate answer: %v", entity.ErrRetrievalFailure, err)
	}

	result := &Result{
		Answer:     strings.TrimSpace(answer),
		Source:     SourceRetrieval,
		Confidence: confidence,
	}

	// Keyword link attachment is independent of the generated text.
	if url, label, ok := r.table.LinkFor(question); ok {
		result.Link = url
		result.Label = label
	}

	return result, nil
}
