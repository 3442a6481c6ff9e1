package embedding

import (
	"context"
	"math"
	"testing"
)

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Settings{Provider: "carrier-pigeon"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewDisabled(t *testing.T) {
	p, err := New(Settings{})
	if err != nil {
		t.Fatalf("disabled settings: %v", err)
	}
	if p != nil {
		t.Error("expected nil provider when disabled")
	}
}

func TestHashDeterministic(t *testing.T) {
	p := NewHash(32)
	a, err := p.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	b, _ := p.Embed(context.Background(), "same text")
	c, _ := p.Embed(context.Background(), "different text")

	if len(a) != 32 {
		t.Fatalf("expected 32 dims, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same text must produce identical vectors")
		}
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different text produced identical vectors")
	}
}

func TestHashUnitNorm(t *testing.T) {
	p := NewHash(64)
	v, _ := p.Embed(context.Background(), "normalize me")

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-4 {
		t.Errorf("expected unit vector, norm %v", math.Sqrt(norm))
	}
}

func TestHashDefaultDims(t *testing.T) {
	p := NewHash(0)
	if p.Dims() != 64 {
		t.Errorf("expected default 64 dims, got %d", p.Dims())
	}
}

func TestOllamaDefaults(t *testing.T) {
	p := newOllama(Settings{})
	if p.model != "nomic-embed-text" || p.dims != 768 {
		t.Errorf("wrong defaults: model=%s dims=%d", p.model, p.dims)
	}
}

func TestOpenAIDefaults(t *testing.T) {
	p := newOpenAI(Settings{})
	if p.model != "text-embedding-3-small" || p.dims != 1536 {
		t.Errorf("wrong defaults: model=%s dims=%d", p.model, p.dims)
	}
}
