// Package model defines the core record types for the memory engine.
package model

import (
	"errors"
	"time"
)

// Role identifies who a remembered fact originated from.
type Role string

// Valid roles for a MemoryEntry.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ValidRoles are the allowed memory roles.
var ValidRoles = map[Role]bool{
	RoleUser:      true,
	RoleAssistant: true,
	RoleSystem:    true,
}

// DefaultImportance is assigned when the caller does not supply one.
const DefaultImportance = 0.5

// Validation errors. Writes failing validation never reach disk.
var (
	ErrEmptyContent     = errors.New("content is empty")
	ErrMissingEmbedding = errors.New("embedding is required")
	ErrImportanceRange  = errors.New("importance must be in [0.0, 1.0]")
	ErrInvalidRole      = errors.New("invalid role")
	ErrEmptySessionID   = errors.New("session id is empty")
)

// MemoryEntry is an atomic remembered fact.
//
// The embedding is mandatory: an entry without one is rejected before any
// I/O rather than stored as a text-only record.
type MemoryEntry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding"`
	Importance float64   `json:"importance"`
	Tags       []string  `json:"tags,omitempty"`
	SessionID  string    `json:"session_id,omitempty"`
}

// Validate checks the entry's invariants prior to persistence.
func (m *MemoryEntry) Validate() error {
	if m.Content == "" {
		return ErrEmptyContent
	}
	if len(m.Embedding) == 0 {
		return ErrMissingEmbedding
	}
	if m.Importance < 0 || m.Importance > 1 {
		return ErrImportanceRange
	}
	if !ValidRoles[m.Role] {
		return ErrInvalidRole
	}
	return nil
}

// HasTag reports whether the entry carries the given tag.
// Tags are informational only and never affect scoring.
func (m *MemoryEntry) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SessionSummary is a narrative rollup of one session's messages.
// Exactly zero or one live row exists per session; re-summarization
// replaces the live row and bumps Version.
//
// Summary embeddings live in their own space. They are never compared
// against MemoryEntry embeddings.
type SessionSummary struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the summary's invariants prior to persistence.
func (s *SessionSummary) Validate() error {
	if s.SessionID == "" {
		return ErrEmptySessionID
	}
	if s.Summary == "" {
		return ErrEmptyContent
	}
	if len(s.Embedding) == 0 {
		return ErrMissingEmbedding
	}
	return nil
}
