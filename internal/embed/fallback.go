package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
)

// FallbackEmbedder generates deterministic embeddings without any external
// service. Each of the first D words of the text is hashed into [0,1) via
// FNV-64 and placed at its word position; the vector is then normalized to
// unit length. Quality is lexical only, but results are stable across runs
// and processes.
type FallbackEmbedder struct {
	dims   int
	mu     sync.RWMutex
	closed bool
}

// wordRegex matches word tokens (letters and digits).
var wordRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewFallbackEmbedder creates a fallback embedder with the given dimension.
func NewFallbackEmbedder(dims int) *FallbackEmbedder {
	return &FallbackEmbedder{dims: dims}
}

// Embed generates a deterministic embedding for the text.
// Empty or whitespace-only text yields the zero vector.
func (e *FallbackEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("embedder is closed")
	}
	e.mu.RUnlock()

	vector := make([]float32, e.dims)

	words := wordRegex.FindAllString(strings.ToLower(text), e.dims)
	if len(words) == 0 {
		return vector, nil
	}

	for i, word := range words {
		vector[i] = hashToUnit(word)
	}

	return normalizeVector(vector), nil
}

// hashToUnit maps a string to a stable value in [0,1) via FNV-64.
func hashToUnit(s string) float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return float32(float64(h.Sum64()) / float64(1<<63) / 2)
}

// Dimensions returns the embedding dimension.
func (e *FallbackEmbedder) Dimensions() int {
	return e.dims
}

// ModelName returns the model identifier.
func (e *FallbackEmbedder) ModelName() string {
	return "fallback"
}

// Available checks if the embedder is ready (always true unless closed).
func (e *FallbackEmbedder) Available(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close releases resources.
func (e *FallbackEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
