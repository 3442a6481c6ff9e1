package embedding

import (
	"context"
	"hash/fnv"
	"math"
)

// HashProvider generates deterministic unit vectors from a text hash.
// It carries no semantic signal and exists for tests and offline smoke
// runs where no real provider is reachable.
type HashProvider struct {
	dims int
}

// NewHash creates a deterministic hash-based provider.
func NewHash(dims int) *HashProvider {
	if dims <= 0 {
		dims = 64
	}
	return &HashProvider{dims: dims}
}

// Embed returns the same unit vector for the same text, always.
func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, p.dims)
	var norm float64
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		v := float64(int64(seed)) / float64(math.MaxInt64)
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

// Dims returns the vector length.
func (p *HashProvider) Dims() int { return p.dims }
