// Package embed provides vector embedding generation for indexed documents.
//
// The real provider is an HTTP embedding service. When it is unreachable,
// times out, or fails, the engine falls back to a deterministic hash-based
// embedding so the index stays searchable. Vectors produced by the fallback
// are only semantically comparable to other fallback vectors; this degraded
// mode is intentional and logged, not hidden.
package embed

import (
	"context"
	"math"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates an embedding for a single text.
	// The returned vector is L2-normalized unless it is the zero vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
// The zero vector is returned unchanged; it is the "no embedding" sentinel.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
