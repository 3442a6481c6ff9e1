// Package retrieval orchestrates ranking over a candidate pool: cosine
// prefilter, hybrid scoring, deduplication, and budget-bounded context
// packing. A Retriever is instantiated once per embedding space; memory
// entries and session summaries never share a candidate pool.
package retrieval

import (
	"sort"
	"time"

	"github.com/jeremysball/alfred-memory/internal/rank"
)

// Defaults applied by New when a Params field is zero.
const (
	DefaultMinSimilarity = 0.7
	DefaultLimit         = 20
)

// Params configures one retriever instance.
type Params struct {
	// MinSimilarity is a prefilter on raw cosine similarity, applied
	// before hybrid scoring.
	MinSimilarity float64
	// Limit caps the number of ranked results.
	Limit int
	// HalfLifeDays controls recency decay in the hybrid score.
	HalfLifeDays float64
	// DedupThreshold is the near-duplicate cosine cutoff.
	DedupThreshold float64
}

// Retriever ranks candidates against a query embedding.
type Retriever struct {
	params Params
}

// New creates a Retriever, filling zero params with defaults.
func New(p Params) *Retriever {
	if p.MinSimilarity == 0 {
		p.MinSimilarity = DefaultMinSimilarity
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.HalfLifeDays <= 0 {
		p.HalfLifeDays = rank.DefaultHalfLifeDays
	}
	if p.DedupThreshold <= 0 {
		p.DedupThreshold = rank.DefaultDedupThreshold
	}
	return &Retriever{params: p}
}

// Rank scores candidates against query and returns the deduplicated top
// results, best first. Candidates below the similarity prefilter never
// reach hybrid scoring. minSimilarity and limit override the configured
// values when positive.
func (r *Retriever) Rank(candidates []rank.Candidate, query []float32, now time.Time, minSimilarity float64, limit int) []rank.Scored {
	if minSimilarity <= 0 {
		minSimilarity = r.params.MinSimilarity
	}
	if limit <= 0 {
		limit = r.params.Limit
	}

	scored := make([]rank.Scored, 0, len(candidates))
	for _, c := range candidates {
		sim := rank.Cosine(query, c.Embedding)
		if sim < minSimilarity {
			continue
		}
		scored = append(scored, rank.Scored{
			Candidate:  c,
			Similarity: sim,
			Score:      rank.HybridScore(sim, c.CreatedAt, c.Importance, now, r.params.HalfLifeDays),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	scored = rank.Deduplicate(scored, r.params.DedupThreshold)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// EstimateTokens approximates the token count of text as len/4.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// PackContext greedily selects already-ranked blocks (best first) whose
// combined token estimate stays within budget. A block that would
// overflow the budget is omitted whole, never truncated, and packing
// continues with the remaining blocks. Returns the kept blocks in rank
// order and the tokens used.
func PackContext(blocks []string, tokenBudget int) ([]string, int) {
	if tokenBudget <= 0 {
		return nil, 0
	}
	var kept []string
	used := 0
	for _, b := range blocks {
		cost := EstimateTokens(b)
		if used+cost > tokenBudget {
			continue
		}
		kept = append(kept, b)
		used += cost
	}
	return kept, used
}
