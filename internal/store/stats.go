package store

import (
	"context"
	"os"
	"sort"
)

// Stats holds store statistics.
type Stats struct {
	MemoryLogPath    string         `json:"memory_log_path"`
	MemoryLogBytes   int64          `json:"memory_log_bytes"`
	SummaryLogPath   string         `json:"summary_log_path"`
	SummaryLogBytes  int64          `json:"summary_log_bytes"`
	TotalMemories    int            `json:"total_memories"`
	TotalSummaries   int            `json:"total_summaries"`
	EmbeddingDims    int            `json:"embedding_dims,omitempty"`
	Sessions         []SessionStats `json:"sessions,omitempty"`
	UngroupedEntries int            `json:"ungrouped_entries,omitempty"`
}

// SessionStats holds per-session counts.
type SessionStats struct {
	SessionID  string `json:"session_id"`
	Entries    int    `json:"entries"`
	Summarized bool   `json:"summarized"`
}

// CollectStats reports sizes and counts across both collections.
func CollectStats(ctx context.Context, memories *MemoryStore, summaries *SummaryStore) (*Stats, error) {
	st := &Stats{
		MemoryLogPath:  memories.Path(),
		SummaryLogPath: summaries.Path(),
	}
	if info, err := os.Stat(memories.Path()); err == nil {
		st.MemoryLogBytes = info.Size()
	}
	if info, err := os.Stat(summaries.Path()); err == nil {
		st.SummaryLogBytes = info.Size()
	}

	entries, err := memories.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := summaries.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	st.TotalMemories = len(entries)
	st.TotalSummaries = len(sums)

	summarized := make(map[string]bool, len(sums))
	for _, s := range sums {
		summarized[s.SessionID] = true
	}

	perSession := map[string]int{}
	for _, m := range entries {
		if st.EmbeddingDims == 0 {
			st.EmbeddingDims = len(m.Embedding)
		}
		if m.SessionID == "" {
			st.UngroupedEntries++
			continue
		}
		perSession[m.SessionID]++
	}

	for id, n := range perSession {
		st.Sessions = append(st.Sessions, SessionStats{
			SessionID:  id,
			Entries:    n,
			Summarized: summarized[id],
		})
	}
	// Summaries can exist for sessions with no remaining entries.
	for id := range summarized {
		if _, ok := perSession[id]; !ok {
			st.Sessions = append(st.Sessions, SessionStats{SessionID: id, Summarized: true})
		}
	}
	sort.Slice(st.Sessions, func(i, j int) bool {
		if st.Sessions[i].Entries != st.Sessions[j].Entries {
			return st.Sessions[i].Entries > st.Sessions[j].Entries
		}
		return st.Sessions[i].SessionID < st.Sessions[j].SessionID
	})

	return st, nil
}
