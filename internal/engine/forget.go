package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jeremysball/alfred-memory/internal/store"
)

// previewLen bounds the content preview echoed in confirmation prompts.
const previewLen = 80

// pendingDeletion tracks a not-yet-confirmed deletion request. Held in
// memory only; a process restart resets all pending deletions.
type pendingDeletion struct {
	MemoryID     string
	Preview      string
	RequestedAt  time.Time
	RequestCount int
}

// deletionCoordinator owns the pending-deletion table. Each coordinator
// instance has its own table, so engines never share pending state.
//
// The table is an expiring map: an entry that outlives the TTL is
// indistinguishable from one that never existed, which is exactly the
// protocol's expiry rule.
type deletionCoordinator struct {
	ttl     time.Duration
	pending *gocache.Cache
}

func newDeletionCoordinator(ttl time.Duration) *deletionCoordinator {
	return &deletionCoordinator{
		ttl:     ttl,
		pending: gocache.New(ttl, 2*ttl),
	}
}

// get returns the live pending deletion for id, if any.
func (d *deletionCoordinator) get(id string) (*pendingDeletion, bool) {
	v, ok := d.pending.Get(id)
	if !ok {
		return nil, false
	}
	p, ok := v.(*pendingDeletion)
	return p, ok
}

// request records a fresh confirmation cycle for id.
func (d *deletionCoordinator) request(id, preview string, now time.Time) *pendingDeletion {
	p := &pendingDeletion{
		MemoryID:     id,
		Preview:      preview,
		RequestedAt:  now,
		RequestCount: 1,
	}
	d.pending.Set(id, p, gocache.DefaultExpiration)
	return p
}

// clear removes any pending deletion for id.
func (d *deletionCoordinator) clear(id string) {
	d.pending.Delete(id)
}

// ForgetOutcome labels the result variant of a forget call.
type ForgetOutcome string

// Forget outcomes.
const (
	// ForgetCandidates: query mode returned ranked deletion candidates.
	ForgetCandidates ForgetOutcome = "candidates"
	// ForgetConfirm: first request for this id; a second call within the
	// TTL is required to actually delete.
	ForgetConfirm ForgetOutcome = "confirmation_required"
	// ForgetDeleted: the confirmed entry was removed from the store.
	ForgetDeleted ForgetOutcome = "deleted"
	// ForgetNotFound: the id does not exist in the store.
	ForgetNotFound ForgetOutcome = "not_found"
)

// ForgetParams selects one of the two forget modes: a non-empty Query
// runs candidate discovery; a non-empty ID runs the request/confirm
// protocol. ID takes precedence when both are set.
type ForgetParams struct {
	Query         []float32
	ID            string
	Limit         int
	MinSimilarity float64
}

// ForgetResult is the typed outcome of a forget call.
type ForgetResult struct {
	Outcome      ForgetOutcome `json:"outcome"`
	MemoryID     string        `json:"memory_id,omitempty"`
	Preview      string        `json:"preview,omitempty"`
	RequestCount int           `json:"request_count,omitempty"`
	ExpiresAt    time.Time     `json:"expires_at,omitempty"`
	Candidates   []ScoredEntry `json:"candidates,omitempty"`
}

// Forget implements the two-phase deletion protocol.
//
// Query mode is a pure read: it ranks candidates and never touches
// pending state. Id mode requires two separate calls: the first records a
// pending deletion and returns a confirmation prompt; the second, within
// the TTL, performs the delete. An expired pending request restarts the
// cycle. There is deliberately no single-call confirm flag.
func (e *Engine) Forget(ctx context.Context, p ForgetParams) (*ForgetResult, error) {
	if p.ID != "" {
		return e.forgetByID(ctx, p.ID)
	}
	if len(p.Query) == 0 {
		return nil, fmt.Errorf("forget: either an id or a query embedding is required")
	}

	candidates, err := e.SearchMemories(ctx, SearchParams{
		Embedding:     p.Query,
		Limit:         p.Limit,
		MinSimilarity: p.MinSimilarity,
	})
	if err != nil {
		return nil, err
	}
	return &ForgetResult{Outcome: ForgetCandidates, Candidates: candidates}, nil
}

func (e *Engine) forgetByID(ctx context.Context, id string) (*ForgetResult, error) {
	if _, err := ulid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedID, id)
	}

	entry, err := e.memories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Covers both a bogus id and an entry deleted through another
		// path between the two calls.
		e.deletions.clear(id)
		return &ForgetResult{Outcome: ForgetNotFound, MemoryID: id}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("forget: %w", err)
	}

	now := e.now()
	if pending, ok := e.deletions.get(id); ok {
		if err := e.memories.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				e.deletions.clear(id)
				return &ForgetResult{Outcome: ForgetNotFound, MemoryID: id}, nil
			}
			return nil, fmt.Errorf("forget: %w", err)
		}
		e.deletions.clear(id)
		e.log.Info().Str("id", id).Msg("memory deleted after confirmation")
		return &ForgetResult{
			Outcome:      ForgetDeleted,
			MemoryID:     id,
			Preview:      pending.Preview,
			RequestCount: pending.RequestCount + 1,
		}, nil
	}

	// First request, or the prior one expired: start a fresh cycle.
	pending := e.deletions.request(id, preview(entry.Content), now)
	e.log.Info().Str("id", id).Msg("deletion requested, awaiting confirmation")
	return &ForgetResult{
		Outcome:      ForgetConfirm,
		MemoryID:     id,
		Preview:      pending.Preview,
		RequestCount: pending.RequestCount,
		ExpiresAt:    now.Add(e.deletions.ttl),
	}, nil
}

func preview(content string) string {
	if len(content) <= previewLen {
		return content
	}
	return content[:previewLen] + "..."
}
