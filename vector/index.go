package vector

import (
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/poiesic/indexit/core"
)

// Result is a single nearest-neighbor match.
type Result struct {
	Fragment core.Fragment
	Score    float32
}

// Index holds embedding vectors alongside the fragments they were computed
// from, aligned by position. It is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	dim     int
	vectors [][]float32
	frags   []core.Fragment
}

// New creates an empty index. The dimension is fixed by the first batch
// appended to it.
func New() *Index {
	return &Index{}
}

// Append adds a batch of vectors with their fragments. The batch is
// validated as a whole before anything is committed: a count or dimension
// mismatch leaves the index untouched.
func (x *Index) Append(vectors [][]float32, fragments []core.Fragment) error {
	if len(vectors) != len(fragments) {
		return fmt.Errorf("%w: %d vectors, %d fragments", ErrCountMismatch, len(vectors), len(fragments))
	}
	if len(vectors) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	dim := x.dim
	if dim == 0 && len(x.vectors) == 0 {
		dim = len(vectors[0])
		if dim == 0 {
			return fmt.Errorf("%w: empty vector", ErrDimensionMismatch)
		}
	}
	for _, vec := range vectors {
		if len(vec) != dim {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(vec), dim)
		}
	}

	x.dim = dim
	for i, vec := range vectors {
		cp := make([]float32, dim)
		copy(cp, vec)
		x.vectors = append(x.vectors, cp)
		x.frags = append(x.frags, fragments[i])
	}
	return nil
}

// Len returns the number of vectors in the index.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.vectors)
}

// Dimension returns the vector width, 0 for an empty index.
func (x *Index) Dimension() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.dim
}

// Query returns the top-k fragments by cosine similarity to query, highest
// first. Equal scores keep insertion order. An empty index returns no
// results.
func (x *Index) Query(query []float32, k int) ([]Result, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.vectors) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(query), x.dim)
	}

	results := make([]Result, len(x.vectors))
	for i, vec := range x.vectors {
		results[i] = Result{Fragment: x.frags[i], Score: cosine(query, vec)}
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// VectorAt returns a copy of the vector at position i.
func (x *Index) VectorAt(i int) ([]float32, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if i < 0 || i >= len(x.vectors) {
		return nil, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, i, len(x.vectors))
	}
	vec := make([]float32, x.dim)
	copy(vec, x.vectors[i])
	return vec, nil
}

// FragmentAt returns the fragment at position i.
func (x *Index) FragmentAt(i int) (core.Fragment, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if i < 0 || i >= len(x.frags) {
		return core.Fragment{}, fmt.Errorf("%w: position %d of %d", ErrOutOfRange, i, len(x.frags))
	}
	return x.frags[i], nil
}

// cosine computes cosine similarity in float64 for numeric stability.
// Zero-magnitude vectors score 0.
func cosine(a, b []float32) float32 {
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na2) * math.Sqrt(nb2)))
}
