package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeremysball/alfred-memory/internal/model"
	"github.com/jeremysball/alfred-memory/internal/rank"
	"github.com/jeremysball/alfred-memory/internal/retrieval"
)

// SearchParams holds the inputs of a memory search. Embedding is the
// query vector; Tag and SessionID narrow the candidate pool before
// ranking, so the similarity floor and limit apply to the filtered set.
type SearchParams struct {
	Embedding     []float32
	Limit         int
	MinSimilarity float64
	Tag           string
	SessionID     string
}

// ScoredEntry is a memory entry annotated with its raw similarity and
// hybrid score.
type ScoredEntry struct {
	model.MemoryEntry
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// SearchMemories returns the ranked, deduplicated entries relevant to the
// query embedding. An empty result means nothing cleared the similarity
// floor; I/O failures surface as errors.
func (e *Engine) SearchMemories(ctx context.Context, p SearchParams) ([]ScoredEntry, error) {
	if len(p.Embedding) == 0 {
		return nil, model.ErrMissingEmbedding
	}
	entries, err := e.memories.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search memories: %w", err)
	}

	byID := make(map[string]model.MemoryEntry, len(entries))
	candidates := make([]rank.Candidate, 0, len(entries))
	for _, m := range entries {
		if p.Tag != "" && !m.HasTag(p.Tag) {
			continue
		}
		if p.SessionID != "" && m.SessionID != p.SessionID {
			continue
		}
		byID[m.ID] = m
		candidates = append(candidates, rank.Candidate{
			ID:         m.ID,
			Embedding:  m.Embedding,
			CreatedAt:  m.CreatedAt,
			Importance: m.Importance,
		})
	}

	ranked := e.memoryRetriever.Rank(candidates, p.Embedding, e.now(), p.MinSimilarity, p.Limit)

	results := make([]ScoredEntry, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, ScoredEntry{
			MemoryEntry: byID[r.ID],
			Similarity:  r.Similarity,
			Score:       r.Score,
		})
	}
	e.log.Debug().Int("candidates", len(candidates)).Int("results", len(results)).Msg("memory search")
	return results, nil
}

// SessionSearchParams holds the inputs of a session-summary search.
type SessionSearchParams struct {
	Embedding     []float32
	Limit         int
	MinSimilarity float64
}

// ScoredSummary is a session summary annotated with its scores.
type ScoredSummary struct {
	model.SessionSummary
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// SearchSessions returns the ranked session summaries relevant to the
// query embedding. Summaries are scored in their own embedding space and
// carry no manual importance; a neutral mid-value stands in for it.
func (e *Engine) SearchSessions(ctx context.Context, p SessionSearchParams) ([]ScoredSummary, error) {
	if len(p.Embedding) == 0 {
		return nil, model.ErrMissingEmbedding
	}
	sums, err := e.summaries.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("search sessions: %w", err)
	}

	byID := make(map[string]model.SessionSummary, len(sums))
	candidates := make([]rank.Candidate, 0, len(sums))
	for _, s := range sums {
		byID[s.ID] = s
		candidates = append(candidates, rank.Candidate{
			ID:         s.ID,
			Embedding:  s.Embedding,
			CreatedAt:  s.CreatedAt,
			Importance: model.DefaultImportance,
		})
	}

	ranked := e.sessionRetriever.Rank(candidates, p.Embedding, e.now(), p.MinSimilarity, p.Limit)

	results := make([]ScoredSummary, 0, len(ranked))
	for _, r := range ranked {
		results = append(results, ScoredSummary{
			SessionSummary: byID[r.ID],
			Similarity:     r.Similarity,
			Score:          r.Score,
		})
	}
	return results, nil
}

// ContextParams holds the inputs of context assembly.
type ContextParams struct {
	Embedding     []float32
	TokenBudget   int
	MinSimilarity float64
}

// ContextResult is an assembled context block.
type ContextResult struct {
	Budget  int    `json:"budget"`
	Used    int    `json:"used"`
	Entries int    `json:"entries"`
	Text    string `json:"text"`
}

// MemoryContext searches and greedily packs formatted entries, most
// relevant first, into the token budget. Entries that would overflow the
// budget are omitted whole, never truncated.
func (e *Engine) MemoryContext(ctx context.Context, p ContextParams) (*ContextResult, error) {
	budget := p.TokenBudget
	if budget <= 0 {
		budget = e.contextBudget
	}

	results, err := e.SearchMemories(ctx, SearchParams{
		Embedding:     p.Embedding,
		MinSimilarity: p.MinSimilarity,
		// Rank more than the default result page; the budget does the
		// final truncation.
		Limit: 50,
	})
	if err != nil {
		return nil, err
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, formatEntry(r.MemoryEntry))
	}

	kept, used := retrieval.PackContext(blocks, budget)
	return &ContextResult{
		Budget:  budget,
		Used:    used,
		Entries: len(kept),
		Text:    strings.Join(kept, "\n"),
	}, nil
}

// formatEntry renders one memory entry as a context line.
func formatEntry(m model.MemoryEntry) string {
	var b strings.Builder
	b.WriteString("- [")
	b.WriteString(m.CreatedAt.Format("2006-01-02"))
	b.WriteString("] ")
	b.WriteString(m.Content)
	if len(m.Tags) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(m.Tags, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// ListParams holds the inputs of the list operation.
type ListParams struct {
	Limit     int
	SessionID string
	Tag       string
}

// ListMemories returns entries newest first, optionally filtered by
// session or tag.
func (e *Engine) ListMemories(ctx context.Context, p ListParams) ([]model.MemoryEntry, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	entries, err := e.memories.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list memories: %w", err)
	}

	out := make([]model.MemoryEntry, 0, limit)
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		m := entries[i]
		if p.SessionID != "" && m.SessionID != p.SessionID {
			continue
		}
		if p.Tag != "" && !m.HasTag(p.Tag) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Export returns all records with embeddings stripped, for human
// inspection or backup of the text content.
func (e *Engine) Export(ctx context.Context) ([]model.MemoryEntry, []model.SessionSummary, error) {
	entries, err := e.memories.LoadAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}
	sums, err := e.summaries.LoadAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("export: %w", err)
	}
	for i := range entries {
		entries[i].Embedding = nil
	}
	for i := range sums {
		sums[i].Embedding = nil
	}
	return entries, sums, nil
}
