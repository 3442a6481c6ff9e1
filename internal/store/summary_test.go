package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeremysball/alfred-memory/internal/model"
)

func newTestSummaryStore(t *testing.T) *SummaryStore {
	t.Helper()
	s, err := NewSummaryStore(filepath.Join(t.TempDir(), SummaryLogName))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	return s
}

func summary(id, sessionID, text string) model.SessionSummary {
	return model.SessionSummary{
		ID:        id,
		SessionID: sessionID,
		Summary:   text,
		Embedding: []float32{0.5, 0.5},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestReplaceFirstSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestSummaryStore(t)

	got, err := s.Replace(ctx, summary("s1", "sess-a", "initial rollup"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("expected version 1, got %d", got.Version)
	}
}

func TestReplaceBumpsVersionKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	s := newTestSummaryStore(t)

	s.Replace(ctx, summary("s1", "sess-a", "v1 rollup"))
	got, err := s.Replace(ctx, summary("s2", "sess-a", "v2 rollup"))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.Version != 2 {
		t.Errorf("expected version 2, got %d", got.Version)
	}

	all, _ := s.LoadAll(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one live row, got %d", len(all))
	}
	if all[0].Summary != "v2 rollup" || all[0].Version != 2 {
		t.Errorf("live row not replaced: %+v", all[0])
	}
}

func TestReplaceIndependentSessions(t *testing.T) {
	ctx := context.Background()
	s := newTestSummaryStore(t)

	s.Replace(ctx, summary("s1", "sess-a", "about a"))
	s.Replace(ctx, summary("s2", "sess-b", "about b"))

	all, _ := s.LoadAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(all))
	}

	a, err := s.GetBySession(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get sess-a: %v", err)
	}
	if a.Summary != "about a" {
		t.Errorf("wrong summary for sess-a: %q", a.Summary)
	}
}

func TestGetBySessionNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestSummaryStore(t)

	if _, err := s.GetBySession(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceRejectsMissingEmbedding(t *testing.T) {
	ctx := context.Background()
	s := newTestSummaryStore(t)

	sum := summary("s1", "sess-a", "text")
	sum.Embedding = nil
	if _, err := s.Replace(ctx, sum); !errors.Is(err, model.ErrMissingEmbedding) {
		t.Errorf("expected ErrMissingEmbedding, got %v", err)
	}
}

func TestVersionSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), SummaryLogName)

	s, _ := NewSummaryStore(path)
	s.Replace(ctx, summary("s1", "sess-a", "v1"))
	s.Replace(ctx, summary("s2", "sess-a", "v2"))

	reopened, _ := NewSummaryStore(path)
	got, err := reopened.Replace(ctx, summary("s3", "sess-a", "v3"))
	if err != nil {
		t.Fatalf("replace after reopen: %v", err)
	}
	if got.Version != 3 {
		t.Errorf("expected version 3 after reopen, got %d", got.Version)
	}
}

func TestCollectStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	ms, _ := NewMemoryStore(filepath.Join(dir, MemoryLogName))
	ss, _ := NewSummaryStore(filepath.Join(dir, SummaryLogName))

	m := entry("m1", "grouped")
	m.SessionID = "sess-a"
	ms.Append(ctx, m)
	ms.Append(ctx, entry("m2", "ungrouped"))
	ss.Replace(ctx, summary("s1", "sess-a", "rollup"))

	st, err := CollectStats(ctx, ms, ss)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalMemories != 2 || st.TotalSummaries != 1 {
		t.Errorf("wrong counts: %+v", st)
	}
	if st.UngroupedEntries != 1 {
		t.Errorf("expected 1 ungrouped entry, got %d", st.UngroupedEntries)
	}
	if len(st.Sessions) != 1 || !st.Sessions[0].Summarized {
		t.Errorf("wrong session stats: %+v", st.Sessions)
	}
	if st.MemoryLogBytes == 0 {
		t.Error("expected non-zero memory log size")
	}
}
