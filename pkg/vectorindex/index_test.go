package vectorindex

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical unit vectors",
			a:    []float32{1, 0, 0},
			b:    []float32{1, 0, 0},
			want: 1,
		},
		{
			name: "orthogonal vectors",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0,
		},
		{
			name: "opposite vectors",
			a:    []float32{1, 0},
			b:    []float32{-1, 0},
			want: -1,
		},
		{
			name: "zero vector scores zero",
			a:    []float32{0, 0},
			b:    []float32{1, 1},
			want: 0,
		},
		{
			name: "length mismatch scores zero",
			a:    []float32{1, 0, 0},
			b:    []float32{1, 0},
			want: 0,
		},
		{
			name: "empty query scores zero",
			a:    nil,
			b:    []float32{1, 0},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineScaleInvariant(t *testing.T) {
	a := []float32{0.3, 0.5, 0.2}
	b := []float32{0.6, 1.0, 0.4} // a scaled by 2

	got := Cosine(a, b)
	if math.Abs(got-1) > 1e-6 {
		t.Errorf("Cosine of parallel vectors = %v, want 1", got)
	}
}

func TestTopKOrdering(t *testing.T) {
	idx := New([]Document{
		{ID: "far", Embedding: []float32{0, 1}},
		{ID: "near", Embedding: []float32{1, 0}},
		{ID: "mid", Embedding: []float32{1, 1}},
	})

	hits := idx.TopK([]float32{1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("TopK returned %d hits, want 3", len(hits))
	}

	wantOrder := []string{"near", "mid", "far"}
	for i, want := range wantOrder {
		if hits[i].Document.ID != want {
			t.Errorf("hits[%d].ID = %s, want %s", i, hits[i].Document.ID, want)
		}
	}

	if hits[0].Score < hits[1].Score || hits[1].Score < hits[2].Score {
		t.Errorf("scores not descending: %v, %v, %v", hits[0].Score, hits[1].Score, hits[2].Score)
	}
}

func TestTopKClampsK(t *testing.T) {
	idx := New([]Document{
		{ID: "only", Embedding: []float32{1, 0}},
	})

	hits := idx.TopK([]float32{1, 0}, 10)
	if len(hits) != 1 {
		t.Errorf("TopK returned %d hits, want 1", len(hits))
	}
}

func TestTopKEmptyIndex(t *testing.T) {
	idx := New(nil)
	if hits := idx.TopK([]float32{1, 0}, 5); hits != nil {
		t.Errorf("TopK on empty index = %v, want nil", hits)
	}
}

func TestReplaceAndAdd(t *testing.T) {
	idx := New(nil)
	if idx.Len() != 0 {
		t.Fatalf("new index Len = %d, want 0", idx.Len())
	}

	idx.Replace([]Document{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	})
	if idx.Len() != 2 {
		t.Errorf("Len after Replace = %d, want 2", idx.Len())
	}

	idx.Add(Document{ID: "c", Embedding: []float32{1, 1}})
	if idx.Len() != 3 {
		t.Errorf("Len after Add = %d, want 3", idx.Len())
	}

	hits := idx.TopK([]float32{1, 1}, 1)
	if len(hits) != 1 || hits[0].Document.ID != "c" {
		t.Errorf("expected added document to be retrievable, got %+v", hits)
	}
}
