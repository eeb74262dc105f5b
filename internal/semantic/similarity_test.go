package semantic

import (
	"testing"
	"time"
)

func vec(vals ...float32) []float32 { return vals }

func item(id string, v []float32, updated time.Time) Item {
	return Item{ID: id, Kind: KindNote, Title: id, Vector: v, UpdatedAt: updated}
}

// --- CosineSimilarity ---

func TestCosineSimilarity_Identical(t *testing.T) {
	got := CosineSimilarity(vec(1, 2, 3), vec(1, 2, 3))
	if got < 0.9999 || got > 1.0 {
		t.Errorf("similarity of identical vectors = %f, want ~1.0", got)
	}
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	got := CosineSimilarity(vec(1, 0), vec(0, 1))
	if got != 0 {
		t.Errorf("similarity of orthogonal vectors = %f, want 0", got)
	}
}

func TestCosineSimilarity_OppositeClampedToZero(t *testing.T) {
	got := CosineSimilarity(vec(1, 1), vec(-1, -1))
	if got != 0 {
		t.Errorf("opposite vectors = %f, want 0 (clamped)", got)
	}
}

func TestCosineSimilarity_MismatchedDimensions(t *testing.T) {
	if got := CosineSimilarity(vec(1, 2), vec(1, 2, 3)); got != 0 {
		t.Errorf("mismatched dimensions = %f, want 0", got)
	}
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	if got := CosineSimilarity(vec(0, 0), vec(1, 2)); got != 0 {
		t.Errorf("zero vector = %f, want 0", got)
	}
}

// --- FindMostSimilar ---

func TestFindMostSimilar_EmptyCandidates(t *testing.T) {
	results := FindMostSimilar(vec(1, 0), nil, 10, 0)
	if len(results) != 0 {
		t.Errorf("expected empty result for empty candidates, got %d", len(results))
	}
}

func TestFindMostSimilar_RespectsFloorAndLimit(t *testing.T) {
	now := time.Now()
	candidates := []Item{
		item("close", vec(1, 0.1), now),
		item("closer", vec(1, 0.01), now),
		item("far", vec(0.1, 1), now),
		item("orthogonal", vec(0, 1), now),
	}

	results := FindMostSimilar(vec(1, 0), candidates, 2, 0.5)

	if len(results) > 2 {
		t.Fatalf("limit violated: got %d results", len(results))
	}
	for _, r := range results {
		if r.Score < 0.5 {
			t.Errorf("result %q below floor: %f", r.Item.ID, r.Score)
		}
	}
	if results[0].Item.ID != "closer" {
		t.Errorf("best match = %q, want %q", results[0].Item.ID, "closer")
	}
}

func TestFindMostSimilar_SortedDescending(t *testing.T) {
	now := time.Now()
	candidates := []Item{
		item("a", vec(0.5, 1), now),
		item("b", vec(1, 0.2), now),
		item("c", vec(1, 0), now),
	}

	results := FindMostSimilar(vec(1, 0), candidates, 10, 0)
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("results not sorted descending at index %d", i)
		}
	}
}

func TestFindMostSimilar_TieBrokenByRecency(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	// Identical vectors produce identical scores.
	candidates := []Item{
		item("old", vec(1, 0), older),
		item("new", vec(1, 0), newer),
	}

	results := FindMostSimilar(vec(1, 0), candidates, 10, 0)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Item.ID != "new" {
		t.Errorf("tie should rank the more recently updated item first, got %q", results[0].Item.ID)
	}
}

func TestFindMostSimilar_SkipsMissingVectors(t *testing.T) {
	now := time.Now()
	candidates := []Item{
		item("embedded", vec(1, 0), now),
		item("bare", nil, now),
	}

	results := FindMostSimilar(vec(1, 0), candidates, 10, 0)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Item.ID != "embedded" {
		t.Errorf("got %q, want the embedded item", results[0].Item.ID)
	}
}

func TestFindMostSimilar_ZeroLimitReturnsAll(t *testing.T) {
	now := time.Now()
	candidates := []Item{
		item("a", vec(1, 0), now),
		item("b", vec(1, 0.1), now),
	}

	results := FindMostSimilar(vec(1, 0), candidates, 0, 0)
	if len(results) != 2 {
		t.Errorf("limit 0 should return all, got %d", len(results))
	}
}
