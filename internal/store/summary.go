package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jeremysball/alfred-memory/internal/model"
)

// SummaryStore persists SessionSummary records in its own NDJSON log,
// independent of the memory log. At most one live row exists per session;
// replacing a summary bumps its version and rewrites the collection.
type SummaryStore struct {
	path string

	mu        sync.RWMutex
	summaries []model.SessionSummary
	bySession map[string]int
	loaded    bool
}

// NewSummaryStore opens the summary log at path.
func NewSummaryStore(path string) (*SummaryStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &SummaryStore{path: path, bySession: map[string]int{}}, nil
}

// Path returns the backing log path.
func (s *SummaryStore) Path() string { return s.path }

func (s *SummaryStore) load() error {
	if s.loaded {
		return nil
	}
	lines, err := readLog(s.path)
	if err != nil {
		return err
	}
	summaries := make([]model.SessionSummary, 0, len(lines))
	bySession := make(map[string]int, len(lines))
	for i, line := range lines {
		var sum model.SessionSummary
		if err := json.Unmarshal(line, &sum); err != nil {
			return fmt.Errorf("decode summary record %d: %w", i+1, err)
		}
		bySession[sum.SessionID] = len(summaries)
		summaries = append(summaries, sum)
	}
	s.summaries = summaries
	s.bySession = bySession
	s.loaded = true
	return nil
}

// Replace installs sum as the live summary for its session. Any existing
// live row for that session is dropped and the new row's Version is the
// old version plus one (1 for a first summary). The rewritten collection
// is atomically swapped; the stored row is returned.
func (s *SummaryStore) Replace(ctx context.Context, sum model.SessionSummary) (*model.SessionSummary, error) {
	if err := sum.Validate(); err != nil {
		return nil, err
	}
	if sum.ID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrDuplicateID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	sum.Version = 1
	next := make([]model.SessionSummary, 0, len(s.summaries)+1)
	for _, existing := range s.summaries {
		if existing.SessionID == sum.SessionID {
			sum.Version = existing.Version + 1
			continue
		}
		next = append(next, existing)
	}
	next = append(next, sum)

	if err := s.rewrite(next); err != nil {
		return nil, err
	}
	return &sum, nil
}

// LoadAll returns a copy of every live summary. Once the mirror is
// loaded, reads take only the read lock.
func (s *SummaryStore) LoadAll(ctx context.Context) ([]model.SessionSummary, error) {
	s.mu.RLock()
	if s.loaded {
		out := make([]model.SessionSummary, len(s.summaries))
		copy(out, s.summaries)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]model.SessionSummary, len(s.summaries))
	copy(out, s.summaries)
	return out, nil
}

// GetBySession returns the live summary for a session, or ErrNotFound.
func (s *SummaryStore) GetBySession(ctx context.Context, sessionID string) (*model.SessionSummary, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		i, ok := s.bySession[sessionID]
		if !ok {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		sum := s.summaries[i]
		return &sum, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	i, ok := s.bySession[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
	}
	sum := s.summaries[i]
	return &sum, nil
}

// rewrite serializes summaries, swaps the log, and refreshes the mirror.
// Caller must hold the write lock.
func (s *SummaryStore) rewrite(summaries []model.SessionSummary) error {
	bySession := make(map[string]int, len(summaries))
	lines := make([][]byte, 0, len(summaries))
	for _, sum := range summaries {
		if _, ok := bySession[sum.SessionID]; ok {
			return fmt.Errorf("%w: second live summary for session %s", ErrDuplicateID, sum.SessionID)
		}
		line, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("encode summary record: %w", err)
		}
		bySession[sum.SessionID] = len(lines)
		lines = append(lines, line)
	}
	if err := writeAtomic(s.path, lines); err != nil {
		return err
	}
	s.summaries = summaries
	s.bySession = bySession
	s.loaded = true
	return nil
}
