// Package vectorindex is the in-memory similarity index over the knowledge
// base. Documents are loaded from Postgres at startup and served read-only;
// Replace swaps the whole set after an ingest.
package vectorindex

import (
	"math"
	"sort"
	"sync"
)

// Document is one indexed passage with its embedding.
type Document struct {
	ID        string
	Text      string
	SourceURL string
	Embedding []float32
}

// Hit pairs a document with its cosine similarity to the query.
type Hit struct {
	Document Document
	Score    float64
}

type Index struct {
	mu   sync.RWMutex
	docs []Document
}

func New(docs []Document) *Index {
	return &Index{docs: docs}
}

// Replace swaps the full document set. Readers in flight keep the old slice.
func (idx *Index) Replace(docs []Document) {
	idx.mu.Lock()
	idx.docs = docs
	idx.mu.Unlock()
}

// Add appends documents without disturbing the existing set. Used by the
// ingest consumer so new passages serve immediately.
func (idx *Index) Add(docs ...Document) {
	idx.mu.Lock()
	// Copy-on-write keeps in-flight TopK readers safe.
	next := make([]Document, 0, len(idx.docs)+len(docs))
	next = append(next, idx.docs...)
	next = append(next, docs...)
	idx.docs = next
	idx.mu.Unlock()
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// TopK returns the k most similar documents, best first. The top score is
// what the caller treats as retrieval confidence.
func (idx *Index) TopK(query []float32, k int) []Hit {
	idx.mu.RLock()
	docs := idx.docs
	idx.mu.RUnlock()

	if len(docs) == 0 || len(query) == 0 || k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(docs))
	for _, d := range docs {
		hits = append(hits, Hit{Document: d, Score: Cosine(query, d.Embedding)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k]
}

const epsilon = 1e-9

// Cosine computes cosine similarity with an epsilon guard so zero or
// mismatched vectors score 0 instead of dividing by zero.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < epsilon {
		return 0
	}
	return dot / denom
}
