// Package rank implements the pure scoring functions used for retrieval:
// cosine similarity, hybrid relevance scoring, and near-duplicate
// filtering. It performs no I/O and holds no state.
package rank

import (
	"math"
	"time"
)

// DefaultHalfLifeDays controls how fast recency decays in the hybrid score.
const DefaultHalfLifeDays = 30.0

// DefaultDedupThreshold is the cosine similarity above which two ranked
// candidates are considered near-duplicates.
const DefaultDedupThreshold = 0.95

// Hybrid score weights. Fixed policy: semantic relevance first, freshness
// second, manually-assigned importance third.
const (
	similarityWeight = 0.5
	recencyWeight    = 0.3
	importanceWeight = 0.2
)

// Candidate is the scoring view of a stored record. The retrieval layer
// adapts memory entries and session summaries into candidates so both
// collections share the same ranking code without mixing embedding spaces.
type Candidate struct {
	ID         string
	Embedding  []float32
	CreatedAt  time.Time
	Importance float64
}

// Scored is a candidate annotated with its raw similarity and hybrid score.
type Scored struct {
	Candidate
	Similarity float64
	Score      float64
}

// Cosine computes cosine similarity between two vectors, in [-1, 1].
// Mismatched lengths or degenerate (all-zero) vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// HybridScore combines raw similarity with recency decay and importance:
//
//	similarity*0.5 + recency*0.3 + importance*0.2
//
// where recency = exp(-ageDays/halfLifeDays). Deterministic for a fixed now.
func HybridScore(similarity float64, createdAt time.Time, importance float64, now time.Time, halfLifeDays float64) float64 {
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}
	ageDays := now.Sub(createdAt).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	recency := math.Exp(-ageDays / halfLifeDays)
	return similarity*similarityWeight + recency*recencyWeight + importance*importanceWeight
}

// Deduplicate walks an already-ranked list in order and keeps a candidate
// only if its cosine similarity to every previously kept candidate stays
// below threshold. First-seen wins; relative order of survivors is
// preserved.
func Deduplicate(ranked []Scored, threshold float64) []Scored {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}
	kept := make([]Scored, 0, len(ranked))
	for _, c := range ranked {
		dup := false
		for _, k := range kept {
			if Cosine(c.Embedding, k.Embedding) >= threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, c)
		}
	}
	return kept
}
