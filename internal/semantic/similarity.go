// Package semantic implements cosine-similarity ranking over embedded items.
//
// It is pure computation: callers fetch candidates (notes, tasks) from the
// store, attach their stored vectors, and rank them against a query vector.
// Nothing here blocks or touches external state.
package semantic

import (
	"math"
	"sort"
	"time"
)

// ItemKind distinguishes the source entity of an embedded item.
type ItemKind string

const (
	KindNote ItemKind = "note"
	KindTask ItemKind = "task"
)

// Item is a candidate for similarity search — an entity with its stored
// embedding vector. Items without a vector are skipped during ranking
// (the caller decides whether to fall back to keyword matching).
type Item struct {
	ID        string
	Kind      ItemKind
	Title     string
	Text      string
	Project   string
	Category  string
	Tags      []string
	Priority  int
	Vector    []float32
	UpdatedAt time.Time
}

// Result pairs an item with its similarity score in [0,1].
// Results are transient per query and never persisted.
type Result struct {
	Item  Item
	Score float64
}

// FindMostSimilar ranks candidates against the query vector by cosine
// similarity. Results below minSimilarity are dropped, the rest are sorted
// by score descending with ties broken by recency (more recently updated
// first), and the list is truncated to limit.
//
// An empty candidate set returns an empty result, never an error.
// Candidates without a vector are skipped silently.
func FindMostSimilar(query []float32, candidates []Item, limit int, minSimilarity float64) []Result {
	if len(candidates) == 0 || len(query) == 0 {
		return nil
	}

	results := make([]Result, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) == 0 {
			continue
		}
		score := CosineSimilarity(query, c.Vector)
		if score < minSimilarity {
			continue
		}
		results = append(results, Result{Item: c, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.UpdatedAt.After(results[j].Item.UpdatedAt)
	})

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	return results
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// clamped to [0,1]: negative similarity is treated as "no relation" rather
// than "opposite" for ranking purposes. Mismatched or empty vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	sim := dot / denom
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
