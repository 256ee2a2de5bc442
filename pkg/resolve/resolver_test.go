package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"school-concierge-be/internal/constant"
	"school-concierge-be/internal/entity"
	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/llm"
	"school-concierge-be/pkg/vectorindex"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: f.vector},
	}, nil
}

type fakeLLM struct {
	reply      string
	err        error
	lastSystem string
	calls      int
}

func (f *fakeLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	for _, m := range messages {
		if m.Role == constant.ChatMessageRoleSystem {
			f.lastSystem = m.Content
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: constant.ChatMessageRoleUser, Content: prompt}}, opts...)
}

func testTable(t *testing.T) *answers.Table {
	t.Helper()
	data := `{
  "entries": [
    {"keys": ["what are the fees"], "answer": "Fees are published termly.", "link": "https://example.org/fees", "label": "Fees page"}
  ],
  "links": {"sixth form": "https://example.org/sixth-form"},
  "labels": {"https://example.org/sixth-form": "Sixth Form"}
}`
	path := filepath.Join(t.TempDir(), "answers.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	table, err := answers.Load(path, answers.DefaultFuzzyThreshold)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
}

func TestResolveExactMatchSkipsNetwork(t *testing.T) {
	embedder := &fakeEmbedder{}
	model := &fakeLLM{}
	r := New(testTable(t), vectorindex.New(nil), embedder, model, 5, fixedNow)

	res, err := r.Resolve(context.Background(), "What are the FEES?")
	if err != nil {
		t.Fatal(err)
	}

	if res.Source != SourceStatic {
		t.Errorf("Source = %s, want %s", res.Source, SourceStatic)
	}
	if res.Answer != "Fees are published termly." {
		t.Errorf("Answer = %q", res.Answer)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
	if res.Link != "https://example.org/fees" || res.Label != "Fees page" {
		t.Errorf("Link/Label = %q/%q", res.Link, res.Label)
	}
	if embedder.calls != 0 || model.calls != 0 {
		t.Errorf("curated tier must not call providers (embedder=%d llm=%d)", embedder.calls, model.calls)
	}
}

func TestResolveFuzzyMatch(t *testing.T) {
	r := New(testTable(t), vectorindex.New(nil), &fakeEmbedder{}, &fakeLLM{}, 5, fixedNow)

	res, err := r.Resolve(context.Background(), "please tell me what are the fees this year")
	if err != nil {
		t.Fatal(err)
	}
	if res.Source != SourceFuzzy {
		t.Errorf("Source = %s, want %s", res.Source, SourceFuzzy)
	}
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", res.Confidence)
	}
}

func TestResolveGuardedPatterns(t *testing.T) {
	embedder := &fakeEmbedder{}
	r := New(testTable(t), vectorindex.New(nil), embedder, &fakeLLM{}, 5, fixedNow)

	for _, q := range []string{
		"How many pupils are in year 7?",
		"how much does the bus cost",
	} {
		res, err := r.Resolve(context.Background(), q)
		if err != nil {
			t.Fatal(err)
		}
		if res.Source != SourcePattern {
			t.Errorf("%q: Source = %s, want %s", q, res.Source, SourcePattern)
		}
		if res.Answer != constant.NumericGuardMessage {
			t.Errorf("%q: unexpected answer %q", q, res.Answer)
		}
	}

	if embedder.calls != 0 {
		t.Errorf("guarded tier must not embed, got %d calls", embedder.calls)
	}
}

func TestResolveRetrieval(t *testing.T) {
	idx := vectorindex.New([]vectorindex.Document{
		{ID: "a", Text: "The sixth form offers A Levels in 20 subjects.", Embedding: []float32{1, 0}},
		{ID: "b", Text: "Lunch is served at noon.", Embedding: []float32{0, 1}},
	})
	embedder := &fakeEmbedder{vector: []float32{1, 0}}
	model := &fakeLLM{reply: "The sixth form offers a wide choice of A Levels."}

	r := New(testTable(t), idx, embedder, model, 5, fixedNow)

	res, err := r.Resolve(context.Background(), "tell me about your sixth form options")
	if err != nil {
		t.Fatal(err)
	}

	if res.Source != SourceRetrieval {
		t.Errorf("Source = %s, want %s", res.Source, SourceRetrieval)
	}
	if res.Answer != "The sixth form offers a wide choice of A Levels." {
		t.Errorf("Answer = %q", res.Answer)
	}
	// Confidence is the best cosine score; the query equals document a.
	if res.Confidence < 0.99 {
		t.Errorf("Confidence = %v, want ~1.0", res.Confidence)
	}
	// The excerpts must reach the model.
	if !strings.Contains(model.lastSystem, "The sixth form offers A Levels in 20 subjects.") {
		t.Errorf("system prompt missing excerpt: %q", model.lastSystem)
	}
	// Keyword link attachment.
	if res.Link != "https://example.org/sixth-form" || res.Label != "Sixth Form" {
		t.Errorf("Link/Label = %q/%q", res.Link, res.Label)
	}
}

func TestResolveEmptyIndex(t *testing.T) {
	r := New(testTable(t), vectorindex.New(nil), &fakeEmbedder{vector: []float32{1, 0}}, &fakeLLM{}, 5, fixedNow)

	res, err := r.Resolve(context.Background(), "something not curated")
	if err != nil {
		t.Fatal(err)
	}
	if res.Answer != constant.NoRelevantAnswerMessage {
		t.Errorf("Answer = %q", res.Answer)
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", res.Confidence)
	}
}

func TestResolveEmbedFailure(t *testing.T) {
	r := New(testTable(t), vectorindex.New(nil), &fakeEmbedder{err: errors.New("boom")}, &fakeLLM{}, 5, fixedNow)

	_, err := r.Resolve(context.Background(), "something not curated")
	if !errors.Is(err, entity.ErrRetrievalFailure) {
		t.Errorf("err = %v, want ErrRetrievalFailure", err)
	}
}

func TestResolveGenerationFailure(t *testing.T) {
	idx := vectorindex.New([]vectorindex.Document{
		{ID: "a", Text: "doc", Embedding: []float32{1, 0}},
	})
	r := New(testTable(t), idx, &fakeEmbedder{vector: []float32{1, 0}}, &fakeLLM{err: errors.New("model down")}, 5, fixedNow)

	_, err := r.Resolve(context.Background(), "something not curated")
	if !errors.Is(err, entity.ErrRetrievalFailure) {
		t.Errorf("err = %v, want ErrRetrievalFailure", err)
	}
}
