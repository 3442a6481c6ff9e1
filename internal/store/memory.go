package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jeremysball/alfred-memory/internal/model"
)

// MemoryStore persists MemoryEntry records in a single NDJSON log.
//
// Mutations are serialized behind the write lock; reads operate on an
// in-memory mirror of the log that is refreshed on every successful write.
type MemoryStore struct {
	path string

	mu      sync.RWMutex
	entries []model.MemoryEntry
	byID    map[string]int
	loaded  bool
}

// NewMemoryStore opens the memory log at path, creating the parent
// directory if needed. The log itself is created lazily on first append.
func NewMemoryStore(path string) (*MemoryStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &MemoryStore{path: path, byID: map[string]int{}}, nil
}

// Path returns the backing log path.
func (s *MemoryStore) Path() string { return s.path }

// load reads the full log into the mirror. Caller must hold the write lock.
func (s *MemoryStore) load() error {
	if s.loaded {
		return nil
	}
	lines, err := readLog(s.path)
	if err != nil {
		return err
	}
	entries := make([]model.MemoryEntry, 0, len(lines))
	byID := make(map[string]int, len(lines))
	for i, line := range lines {
		var m model.MemoryEntry
		if err := json.Unmarshal(line, &m); err != nil {
			return fmt.Errorf("decode memory record %d: %w", i+1, err)
		}
		byID[m.ID] = len(entries)
		entries = append(entries, m)
	}
	s.entries = entries
	s.byID = byID
	s.loaded = true
	return nil
}

// Append adds a new entry to the end of the log. The entry must pass
// validation and carry an id not present in the collection.
func (s *MemoryStore) Append(ctx context.Context, m model.MemoryEntry) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		return fmt.Errorf("%w: empty id", ErrDuplicateID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.byID[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
	}

	line, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode memory record: %w", err)
	}
	if err := appendLine(s.path, line); err != nil {
		return err
	}

	s.byID[m.ID] = len(s.entries)
	s.entries = append(s.entries, m)
	return nil
}

// LoadAll returns a copy of every entry in the collection. Once the
// mirror is loaded, reads take only the read lock.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]model.MemoryEntry, error) {
	s.mu.RLock()
	if s.loaded {
		out := make([]model.MemoryEntry, len(s.entries))
		copy(out, s.entries)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	out := make([]model.MemoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id string) (*model.MemoryEntry, error) {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		i, ok := s.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		m := s.entries[i]
		return &m, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return nil, err
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m := s.entries[i]
	return &m, nil
}

// Update replaces the stored entry with the same id. The whole collection
// is rewritten and atomically swapped.
func (s *MemoryStore) Update(ctx context.Context, m model.MemoryEntry) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	i, ok := s.byID[m.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, m.ID)
	}

	next := make([]model.MemoryEntry, len(s.entries))
	copy(next, s.entries)
	next[i] = m
	return s.rewrite(next)
}

// Delete removes the entry with the given id. The whole collection is
// rewritten and atomically swapped.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := make([]model.MemoryEntry, 0, len(s.entries)-1)
	next = append(next, s.entries[:i]...)
	next = append(next, s.entries[i+1:]...)
	return s.rewrite(next)
}

// RewriteAll replaces the entire collection. Every entry must validate and
// ids must be unique.
func (s *MemoryStore) RewriteAll(ctx context.Context, entries []model.MemoryEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewrite(entries)
}

// rewrite serializes entries, swaps the log, and refreshes the mirror.
// Caller must hold the write lock. On failure the old log and mirror are
// left untouched.
func (s *MemoryStore) rewrite(entries []model.MemoryEntry) error {
	byID := make(map[string]int, len(entries))
	lines := make([][]byte, 0, len(entries))
	for _, m := range entries {
		if _, ok := byID[m.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
		}
		line, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode memory record: %w", err)
		}
		byID[m.ID] = len(lines)
		lines = append(lines, line)
	}
	if err := writeAtomic(s.path, lines); err != nil {
		return err
	}
	s.entries = entries
	s.byID = byID
	s.loaded = true
	return nil
}
