package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestForgetQueryModeReturnsCandidates(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	a, _ := e.Remember(ctx, RememberParams{Content: "lives in San Francisco", Embedding: []float32{1, 0, 0}})
	b, _ := e.Remember(ctx, RememberParams{Content: "works in San Francisco", Embedding: []float32{0.9, 0.4, 0}})
	e.Remember(ctx, RememberParams{Content: "likes green tea", Embedding: []float32{0, 0, 1}})

	got, err := e.Forget(ctx, ForgetParams{Query: []float32{0.98, 0.2, 0}})
	if err != nil {
		t.Fatalf("forget query: %v", err)
	}
	if got.Outcome != ForgetCandidates {
		t.Fatalf("expected candidates outcome, got %s", got.Outcome)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got.Candidates))
	}
	ids := map[string]bool{got.Candidates[0].ID: true, got.Candidates[1].ID: true}
	if !ids[a.ID] || !ids[b.ID] {
		t.Errorf("wrong candidates: %+v", ids)
	}

	// Query mode is a pure read: the next id-mode call must still be a
	// first request.
	res, _ := e.Forget(ctx, ForgetParams{ID: a.ID})
	if res.Outcome != ForgetConfirm {
		t.Errorf("query mode must not create pending state, got %s", res.Outcome)
	}
}

func TestForgetSingleCallNeverDeletes(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	m, _ := e.Remember(ctx, RememberParams{Content: "precious fact", Embedding: []float32{1, 0}})

	got, err := e.Forget(ctx, ForgetParams{ID: m.ID})
	if err != nil {
		t.Fatalf("forget: %v", err)
	}
	if got.Outcome != ForgetConfirm {
		t.Fatalf("expected confirmation_required, got %s", got.Outcome)
	}
	if got.RequestCount != 1 {
		t.Errorf("expected request count 1, got %d", got.RequestCount)
	}
	if got.Preview == "" {
		t.Error("expected content preview in confirmation prompt")
	}

	if _, err := e.GetMemory(ctx, m.ID); err != nil {
		t.Errorf("single forget call must not delete: %v", err)
	}
}

func TestForgetTwoCallsDelete(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	m, _ := e.Remember(ctx, RememberParams{Content: "to be removed", Embedding: []float32{1, 0}})

	first, _ := e.Forget(ctx, ForgetParams{ID: m.ID})
	if first.Outcome != ForgetConfirm {
		t.Fatalf("expected confirmation_required, got %s", first.Outcome)
	}

	second, err := e.Forget(ctx, ForgetParams{ID: m.ID})
	if err != nil {
		t.Fatalf("forget confirm: %v", err)
	}
	if second.Outcome != ForgetDeleted {
		t.Fatalf("expected deleted, got %s", second.Outcome)
	}
	if second.RequestCount != 2 {
		t.Errorf("expected request count 2, got %d", second.RequestCount)
	}

	// Never returned by search again.
	results, _ := e.SearchMemories(ctx, SearchParams{Embedding: []float32{1, 0}})
	for _, r := range results {
		if r.ID == m.ID {
			t.Error("deleted entry still appears in search")
		}
	}

	// A third call starts over against a now-missing id.
	third, _ := e.Forget(ctx, ForgetParams{ID: m.ID})
	if third.Outcome != ForgetNotFound {
		t.Errorf("expected not_found after deletion, got %s", third.Outcome)
	}
}

func TestForgetExpiryResetsProtocol(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{PendingTTL: 30 * time.Millisecond})

	m, _ := e.Remember(ctx, RememberParams{Content: "slow to confirm", Embedding: []float32{1, 0}})

	first, _ := e.Forget(ctx, ForgetParams{ID: m.ID})
	if first.Outcome != ForgetConfirm {
		t.Fatalf("expected confirmation_required, got %s", first.Outcome)
	}

	time.Sleep(60 * time.Millisecond)

	late, err := e.Forget(ctx, ForgetParams{ID: m.ID})
	if err != nil {
		t.Fatalf("forget after expiry: %v", err)
	}
	if late.Outcome != ForgetConfirm {
		t.Fatalf("expired request must restart the cycle, got %s", late.Outcome)
	}
	if late.RequestCount != 1 {
		t.Errorf("expected request count reset to 1, got %d", late.RequestCount)
	}
	if _, err := e.GetMemory(ctx, m.ID); err != nil {
		t.Errorf("entry must survive an expired confirmation cycle: %v", err)
	}
}

func TestForgetDistinctIDsIndependent(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	a, _ := e.Remember(ctx, RememberParams{Content: "fact a", Embedding: []float32{1, 0}})
	b, _ := e.Remember(ctx, RememberParams{Content: "fact b", Embedding: []float32{0, 1}})

	e.Forget(ctx, ForgetParams{ID: a.ID})

	// First call for b is its own cycle, unaffected by a's pending state.
	got, _ := e.Forget(ctx, ForgetParams{ID: b.ID})
	if got.Outcome != ForgetConfirm {
		t.Errorf("expected confirmation_required for b, got %s", got.Outcome)
	}

	// Confirming a deletes only a.
	res, _ := e.Forget(ctx, ForgetParams{ID: a.ID})
	if res.Outcome != ForgetDeleted {
		t.Errorf("expected deleted for a, got %s", res.Outcome)
	}
	if _, err := e.GetMemory(ctx, b.ID); err != nil {
		t.Errorf("b must be untouched: %v", err)
	}
}

func TestForgetUnknownID(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	got, err := e.Forget(ctx, ForgetParams{ID: "01HZZZZZZZZZZZZZZZZZZZZZZZ"})
	if err != nil {
		t.Fatalf("forget: %v", err)
	}
	if got.Outcome != ForgetNotFound {
		t.Errorf("expected not_found, got %s", got.Outcome)
	}
}

func TestForgetMalformedID(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	if _, err := e.Forget(ctx, ForgetParams{ID: "???"}); !errors.Is(err, ErrMalformedID) {
		t.Errorf("expected ErrMalformedID, got %v", err)
	}
}

func TestForgetRequiresIDOrQuery(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, Config{})

	if _, err := e.Forget(ctx, ForgetParams{}); err == nil {
		t.Error("expected error when neither id nor query supplied")
	}
}
