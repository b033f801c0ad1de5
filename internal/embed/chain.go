package embed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Atchoum23/Thea-sub019/internal/errors"
)

// ChainEmbedder tries a primary embedder and substitutes a deterministic
// fallback when the primary is unavailable, times out, or fails. Both
// embedders must share the same dimension.
type ChainEmbedder struct {
	primary  Embedder
	fallback Embedder

	degraded  atomic.Bool
	fallbacks atomic.Uint64
	warnOnce  sync.Once
}

// NewChainEmbedder creates a chain over primary and fallback.
// Returns an error if the dimensions disagree.
func NewChainEmbedder(primary, fallback Embedder) (*ChainEmbedder, error) {
	if primary.Dimensions() != fallback.Dimensions() {
		return nil, fmt.Errorf("embedder dimension mismatch: primary %d, fallback %d",
			primary.Dimensions(), fallback.Dimensions())
	}
	return &ChainEmbedder{primary: primary, fallback: fallback}, nil
}

// Embed generates an embedding, preferring the primary embedder.
// Primary failures are recovered by the fallback; the first recovery logs
// a warning about degraded semantic quality.
func (e *ChainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vector, err := e.primary.Embed(ctx, text)
	if err == nil {
		e.degraded.Store(false)
		return vector, nil
	}

	e.fallbacks.Add(1)
	e.degraded.Store(true)
	e.warnOnce.Do(func() {
		slog.Warn("embedding provider failed, using deterministic fallback",
			slog.String("primary", e.primary.ModelName()),
			slog.Bool("retryable", errors.IsRetryable(err)),
			slog.String("error", err.Error()))
	})
	slog.Debug("fallback embedding used", slog.String("error", err.Error()))

	return e.fallback.Embed(ctx, text)
}

// Dimensions returns the embedding dimension.
func (e *ChainEmbedder) Dimensions() int {
	return e.primary.Dimensions()
}

// ModelName returns the primary model name, or the fallback name while the
// chain is degraded. Documents indexed in a degraded window therefore carry
// the embedder family that actually produced their vectors.
func (e *ChainEmbedder) ModelName() string {
	if e.degraded.Load() {
		return e.fallback.ModelName()
	}
	return e.primary.ModelName()
}

// FallbackCount returns how many embeddings were produced by the fallback.
func (e *ChainEmbedder) FallbackCount() uint64 {
	return e.fallbacks.Load()
}

// Available reports whether either embedder can serve requests.
func (e *ChainEmbedder) Available(ctx context.Context) bool {
	return e.primary.Available(ctx) || e.fallback.Available(ctx)
}

// Close releases both embedders.
func (e *ChainEmbedder) Close() error {
	err := e.primary.Close()
	if ferr := e.fallback.Close(); err == nil {
		err = ferr
	}
	return err
}
