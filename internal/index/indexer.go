// Package index drives the indexing pipeline: batch fan-out over files,
// single-writer commits into the store, and the scan/watch coordinator.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Atchoum23/Thea-sub019/internal/embed"
	"github.com/Atchoum23/Thea-sub019/internal/errors"
	"github.com/Atchoum23/Thea-sub019/internal/scanner"
	"github.com/Atchoum23/Thea-sub019/internal/store"
)

// Skip reasons reported per file in a BatchReport.
const (
	SkipReasonRead      = "read_failure"
	SkipReasonNotText   = "not_text"
	SkipReasonEmbedding = "embedding_failed"
	SkipReasonCancelled = "cancelled"
)

// Skip records one skipped file and why.
type Skip struct {
	Path   string
	Reason string
}

// BatchReport summarizes one IndexBatch call.
type BatchReport struct {
	Indexed     int
	Skipped     int
	SkipReasons map[string]int
	Skips       []Skip
	Duration    time.Duration
}

// BatchIndexer indexes batches of file paths with bounded parallelism.
// Workers produce documents and hand them off; only the store's serialized
// writer applies them, so no two goroutines ever mutate the collection
// concurrently.
type BatchIndexer struct {
	store    *store.Store
	embedder embed.Embedder
	workers  int
}

// NewBatchIndexer creates a batch indexer committing into st.
// workers caps per-batch concurrency; values below 1 become 1.
func NewBatchIndexer(st *store.Store, embedder embed.Embedder, workers int) *BatchIndexer {
	if workers < 1 {
		workers = 1
	}
	return &BatchIndexer{store: st, embedder: embedder, workers: workers}
}

// IndexBatch indexes the given paths concurrently up to the worker cap and
// commits all resulting documents to the store as one serialized operation.
// Per-file failures are counted and skipped, never aborting the batch.
// Cancelling ctx stops spawning new file tasks; documents completed before
// cancellation are still committed, and the context error is returned.
func (b *BatchIndexer) IndexBatch(ctx context.Context, paths []string) (*BatchReport, error) {
	start := time.Now()
	report := &BatchReport{SkipReasons: make(map[string]int)}

	docs := make(chan *store.Document, len(paths))
	skips := make(chan Skip, len(paths))

	g := &errgroup.Group{}
	g.SetLimit(b.workers)

	for _, path := range paths {
		path := path
		if ctx.Err() != nil {
			skips <- Skip{Path: path, Reason: SkipReasonCancelled}
			continue
		}
		g.Go(func() error {
			doc, err := b.indexFile(ctx, path)
			if err != nil {
				skips <- Skip{Path: path, Reason: skipReason(err)}
			} else {
				docs <- doc
			}
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; failures become skips
	close(docs)
	close(skips)

	// Fan-in: the single writer commits every completed document at once.
	committed := make([]*store.Document, 0, len(paths))
	for doc := range docs {
		committed = append(committed, doc)
	}
	if err := b.store.UpsertBatch(committed); err != nil {
		return report, err
	}
	report.Indexed = len(committed)

	for skip := range skips {
		report.Skipped++
		report.SkipReasons[skip.Reason]++
		report.Skips = append(report.Skips, skip)
	}

	report.Duration = time.Since(start)
	slog.Debug("batch indexed",
		slog.Int("indexed", report.Indexed),
		slog.Int("skipped", report.Skipped),
		slog.Duration("duration", report.Duration))

	return report, ctx.Err()
}

// skipReason maps a per-file indexing error to its report bucket.
func skipReason(err error) string {
	switch {
	case errors.HasCode(err, errors.ErrCodeReadFailure):
		return SkipReasonRead
	case errors.HasCode(err, errors.ErrCodeNotText):
		return SkipReasonNotText
	default:
		return SkipReasonEmbedding
	}
}

// indexFile reads, embeds, and builds the document for one path.
// Failures come back as coded engine errors so callers can bucket them.
func (b *BatchIndexer) indexFile(ctx context.Context, path string) (*store.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.ReadFailure(path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("unreadable file skipped",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil, errors.ReadFailure(path, err)
	}
	if !utf8.Valid(data) {
		return nil, errors.NotText(path)
	}
	content := string(data)

	vector, err := b.embedder.Embed(ctx, content)
	if err != nil {
		// The chain's fallback failed too; nothing sensible to store.
		slog.Warn("embedding failed after fallback, file skipped",
			slog.String("path", path), slog.String("error", err.Error()))
		return nil, errors.New(errors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("embedding failed for %s", path), err)
	}

	return &store.Document{
		ID:           uuid.NewString(),
		Path:         filepath.Clean(path),
		DisplayName:  filepath.Base(path),
		Content:      content,
		Embedding:    vector,
		FileType:     scanner.DetectFileType(path),
		EmbeddedWith: b.embedder.ModelName(),
		SizeBytes:    info.Size(),
		LastModified: info.ModTime(),
		IndexedAt:    time.Now(),
	}, nil
}
