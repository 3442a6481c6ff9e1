// Package engine implements the memory engine's operations: remember,
// search, update, two-phase forget, summary replacement, and context
// assembly. It owns the record stores and the deletion coordinator;
// callers supply pre-computed embedding vectors and never an embedding
// provider.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/oklog/ulid/v2"

	"github.com/jeremysball/alfred-memory/internal/model"
	"github.com/jeremysball/alfred-memory/internal/retrieval"
	"github.com/jeremysball/alfred-memory/internal/store"
)

// ErrMalformedID is returned when an operation receives an id that is not
// a valid ULID.
var ErrMalformedID = errors.New("malformed memory id")

// DefaultPendingTTL is how long a deletion request stays confirmable.
const DefaultPendingTTL = 5 * time.Minute

// DefaultContextBudget is the token budget for context assembly when the
// caller does not supply one.
const DefaultContextBudget = 2000

// Config tunes retrieval and the deletion protocol.
type Config struct {
	MinSimilarity  float64
	Limit          int
	HalfLifeDays   float64
	DedupThreshold float64
	PendingTTL     time.Duration
	ContextBudget  int
}

// Engine wires the record stores, the per-space retrievers, and the
// deletion coordinator behind the five caller-facing operations.
type Engine struct {
	memories  *store.MemoryStore
	summaries *store.SummaryStore

	memoryRetriever  *retrieval.Retriever
	sessionRetriever *retrieval.Retriever
	deletions        *deletionCoordinator

	contextBudget int
	log           *bolt.Logger
	now           func() time.Time
}

// New creates an Engine over the given stores. A nil logger discards all
// output.
func New(memories *store.MemoryStore, summaries *store.SummaryStore, cfg Config, logger *bolt.Logger) *Engine {
	if logger == nil {
		logger = bolt.New(bolt.NewConsoleHandler(io.Discard))
	}
	ttl := cfg.PendingTTL
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	budget := cfg.ContextBudget
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	params := retrieval.Params{
		MinSimilarity:  cfg.MinSimilarity,
		Limit:          cfg.Limit,
		HalfLifeDays:   cfg.HalfLifeDays,
		DedupThreshold: cfg.DedupThreshold,
	}
	return &Engine{
		memories:         memories,
		summaries:        summaries,
		memoryRetriever:  retrieval.New(params),
		sessionRetriever: retrieval.New(params),
		deletions:        newDeletionCoordinator(ttl),
		contextBudget:    budget,
		log:              logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// RememberParams holds the inputs of the remember operation. Embedding is
// mandatory and must already be computed by the caller.
type RememberParams struct {
	Content    string
	Embedding  []float32
	Role       model.Role // defaults to user
	Importance *float64   // defaults to model.DefaultImportance
	Tags       []string
	SessionID  string
}

// Remember validates and persists a new memory entry, returning the
// stored record with its assigned id.
func (e *Engine) Remember(ctx context.Context, p RememberParams) (*model.MemoryEntry, error) {
	role := p.Role
	if role == "" {
		role = model.RoleUser
	}
	importance := model.DefaultImportance
	if p.Importance != nil {
		importance = *p.Importance
	}

	entry := model.MemoryEntry{
		ID:         ulid.Make().String(),
		CreatedAt:  e.now(),
		Role:       role,
		Content:    p.Content,
		Embedding:  p.Embedding,
		Importance: importance,
		Tags:       p.Tags,
		SessionID:  p.SessionID,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := e.memories.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("remember: %w", err)
	}

	e.log.Info().Str("id", entry.ID).Str("session", entry.SessionID).Msg("memory stored")
	return &entry, nil
}

// UpdateParams holds the inputs of the update operation. Zero-valued
// fields are left unchanged.
type UpdateParams struct {
	ID         string
	Content    string
	Importance *float64
	// Embedding optionally replaces the stored vector. A content change
	// without a fresh embedding leaves the old vector in place, which
	// degrades search relevance for the edited text.
	Embedding []float32
}

// UpdateMemory mutates content, importance, or embedding of an existing
// entry in place. Returns store.ErrNotFound for unknown ids.
func (e *Engine) UpdateMemory(ctx context.Context, p UpdateParams) (*model.MemoryEntry, error) {
	if _, err := ulid.Parse(p.ID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedID, p.ID)
	}
	entry, err := e.memories.Get(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	if p.Content != "" {
		entry.Content = p.Content
		if len(p.Embedding) == 0 {
			e.log.Warn().Str("id", p.ID).Msg("content updated without a new embedding; stored vector is stale")
		}
	}
	if p.Importance != nil {
		entry.Importance = *p.Importance
	}
	if len(p.Embedding) > 0 {
		entry.Embedding = p.Embedding
	}

	if err := e.memories.Update(ctx, *entry); err != nil {
		return nil, fmt.Errorf("update memory: %w", err)
	}
	e.log.Info().Str("id", entry.ID).Msg("memory updated")
	return entry, nil
}

// ReplaceSummaryParams holds the inputs of the summary-replacement
// operation, called by the external session summarizer.
type ReplaceSummaryParams struct {
	SessionID string
	Summary   string
	Embedding []float32
}

// ReplaceSummary installs a new live summary for the session, bumping its
// version. Prior versions are not retained.
func (e *Engine) ReplaceSummary(ctx context.Context, p ReplaceSummaryParams) (*model.SessionSummary, error) {
	sum := model.SessionSummary{
		ID:        ulid.Make().String(),
		SessionID: p.SessionID,
		Summary:   p.Summary,
		Embedding: p.Embedding,
		CreatedAt: e.now(),
	}
	stored, err := e.summaries.Replace(ctx, sum)
	if err != nil {
		return nil, fmt.Errorf("replace summary: %w", err)
	}
	e.log.Info().Str("session", stored.SessionID).Int("version", stored.Version).Msg("session summary replaced")
	return stored, nil
}

// GetMemory returns a single entry by id.
func (e *Engine) GetMemory(ctx context.Context, id string) (*model.MemoryEntry, error) {
	if _, err := ulid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedID, id)
	}
	return e.memories.Get(ctx, id)
}

// Stats reports store statistics.
func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return store.CollectStats(ctx, e.memories, e.summaries)
}
