package index

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Atchoum23/Thea-sub019/internal/config"
	"github.com/Atchoum23/Thea-sub019/internal/embed"
	"github.com/Atchoum23/Thea-sub019/internal/errors"
	"github.com/Atchoum23/Thea-sub019/internal/scanner"
	"github.com/Atchoum23/Thea-sub019/internal/search"
	"github.com/Atchoum23/Thea-sub019/internal/store"
	"github.com/Atchoum23/Thea-sub019/internal/watcher"
)

// ScanReport summarizes a full scan across all configured roots.
type ScanReport struct {
	RootsScanned []string
	MissingRoots []string
	Indexed      int
	Skipped      int
	SkipReasons  map[string]int
	Warnings     int
	Duration     time.Duration
}

// Coordinator owns the indexing pipeline: it runs full scans, serves
// searches and statistics, and reconciles watcher events with the store.
// At most one full scan runs at a time; a second start is rejected with
// ScanInProgress rather than stacked.
type Coordinator struct {
	cfg      *config.Config
	filter   *scanner.Filter
	scanner  *scanner.Scanner
	store    *store.Store
	embedder embed.Embedder
	indexer  *BatchIndexer
	engine   *search.Engine

	scanning   atomic.Bool
	mu         sync.Mutex
	scanCancel context.CancelFunc
	watch      *watcher.Watcher
	watchDone  chan struct{}
}

// NewCoordinator wires the pipeline from configuration.
// The embedder is injected; production callers pass the cached chain
// (HTTP primary, deterministic fallback).
func NewCoordinator(cfg *config.Config, embedder embed.Embedder) *Coordinator {
	filter := scanner.NewFilter(cfg.Filter, cfg.Scan)
	st := store.New(cfg.Embedding.Dimensions)

	return &Coordinator{
		cfg:      cfg,
		filter:   filter,
		scanner:  scanner.New(filter),
		store:    st,
		embedder: embedder,
		indexer:  NewBatchIndexer(st, embedder, cfg.Indexing.Workers()),
		engine:   search.NewEngine(st, embedder, cfg.Search),
	}
}

// Store exposes the underlying index store.
func (c *Coordinator) Store() *store.Store {
	return c.store
}

// StartFullScan enumerates every configured root and indexes all eligible
// files in batches. Returns ScanInProgress if a scan is already running.
// A missing root is fatal to that root only; the scan fails with
// PathNotFound only when every configured root is missing.
func (c *Coordinator) StartFullScan(ctx context.Context) (*ScanReport, error) {
	if !c.scanning.CompareAndSwap(false, true) {
		return nil, errors.ScanInProgress()
	}
	defer c.scanning.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.scanCancel = cancel
	// Copy under the lock; AddScanRoot may append concurrently.
	roots := append([]string(nil), c.cfg.Scan.Roots...)
	c.mu.Unlock()
	defer func() {
		cancel()
		c.mu.Lock()
		c.scanCancel = nil
		c.mu.Unlock()
	}()

	start := time.Now()
	report := &ScanReport{SkipReasons: make(map[string]int)}

	for _, root := range roots {
		if _, err := os.Stat(root); err != nil {
			slog.Warn("scan root missing", slog.String("root", root))
			report.MissingRoots = append(report.MissingRoots, root)
			continue
		}
		report.RootsScanned = append(report.RootsScanned, root)
	}
	if len(report.RootsScanned) == 0 && len(report.MissingRoots) > 0 {
		return nil, errors.PathNotFound(report.MissingRoots[0])
	}

	for _, root := range report.RootsScanned {
		if err := c.scanRoot(ctx, root, report); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	slog.Info("full scan complete",
		slog.Int("roots", len(report.RootsScanned)),
		slog.Int("indexed", report.Indexed),
		slog.Int("skipped", report.Skipped),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// scanRoot streams one root's files into fixed-size batches.
func (c *Coordinator) scanRoot(ctx context.Context, root string, report *ScanReport) error {
	results, err := c.scanner.Scan(ctx, root)
	if err != nil {
		return errors.Wrap(errors.ErrCodePathNotFound, err)
	}

	batch := make([]string, 0, c.cfg.Indexing.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		br, err := c.indexer.IndexBatch(ctx, batch)
		if br != nil {
			report.Indexed += br.Indexed
			report.Skipped += br.Skipped
			for reason, n := range br.SkipReasons {
				report.SkipReasons[reason] += n
			}
		}
		batch = batch[:0]
		return err
	}

	for result := range results {
		if result.Err != nil {
			report.Warnings++
			continue
		}
		batch = append(batch, result.File.Path)
		if len(batch) >= c.cfg.Indexing.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

// StopScan cancels an in-progress full scan. In-flight file tasks finish
// and their documents are committed; no new tasks are spawned.
// Safe to call when no scan is running.
func (c *Coordinator) StopScan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scanCancel != nil {
		c.scanCancel()
	}
}

// Search runs a query against the current index.
func (c *Coordinator) Search(ctx context.Context, query string, mode search.Mode, topK int) ([]search.Result, error) {
	return c.engine.Search(ctx, query, mode, topK)
}

// Statistics returns index statistics.
func (c *Coordinator) Statistics() store.Statistics {
	return c.store.Statistics()
}

// AddScanRoot registers a new root for scanning and, when watching is
// active, subscribes it for change events. The root is not scanned until
// the next full scan.
func (c *Coordinator) AddScanRoot(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.PathNotFound(path)
	}

	c.mu.Lock()
	c.cfg.Scan.Roots = append(c.cfg.Scan.Roots, path)
	w := c.watch
	c.mu.Unlock()

	if w != nil {
		return w.Add(path)
	}
	return nil
}

// AddExclusion excludes a path prefix from future indexing and evicts any
// already-indexed documents under it.
func (c *Coordinator) AddExclusion(path string) {
	c.filter.AddExclusion(path)
	if removed := c.store.RemovePrefix(path); removed > 0 {
		slog.Info("exclusion evicted documents",
			slog.String("path", path), slog.Int("removed", removed))
	}
}

// StartWatching subscribes every configured root for filesystem events and
// reconciles them with the index until ctx is cancelled or StopWatching is
// called. No-op when watching is disabled in configuration.
func (c *Coordinator) StartWatching(ctx context.Context) error {
	if !c.cfg.Watcher.Enabled {
		return nil
	}

	c.mu.Lock()
	if c.watch != nil {
		c.mu.Unlock()
		return nil
	}
	w, err := watcher.New(watcher.Options{
		DebounceWindow: c.cfg.Watcher.DebounceWindow(),
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.watch = w
	c.watchDone = make(chan struct{})
	roots := append([]string(nil), c.cfg.Scan.Roots...)
	c.mu.Unlock()

	if err := w.Start(ctx, roots...); err != nil {
		_ = w.Stop()
		c.mu.Lock()
		c.watch = nil
		c.watchDone = nil
		c.mu.Unlock()
		return err
	}

	go c.consumeEvents(ctx, w)
	return nil
}

// StopWatching cancels all watch subscriptions. Idempotent.
func (c *Coordinator) StopWatching() {
	c.mu.Lock()
	w, done := c.watch, c.watchDone
	c.watch = nil
	c.watchDone = nil
	c.mu.Unlock()

	if w != nil {
		_ = w.Stop()
		<-done
	}
}

// consumeEvents applies debounced event batches to the index.
func (c *Coordinator) consumeEvents(ctx context.Context, w *watcher.Watcher) {
	defer close(c.watchDone)

	for {
		select {
		case <-ctx.Done():
			return
		case batch, ok := <-w.Events():
			if !ok {
				return
			}
			c.applyEvents(ctx, batch)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}

// applyEvents reconciles one batch of file events with the store:
// stale entries are removed first, then affected paths are re-indexed
// through the regular filter + batch pipeline.
func (c *Coordinator) applyEvents(ctx context.Context, events []watcher.FileEvent) {
	var reindex []string

	for _, event := range events {
		switch event.Operation {
		case watcher.OpDelete, watcher.OpRename:
			// Covers both a file and a deleted directory subtree.
			c.store.RemovePrefix(event.Path)

		case watcher.OpCreate, watcher.OpModify:
			if event.IsDir {
				c.rescanSubtree(ctx, event.Path)
				continue
			}
			info, err := os.Stat(event.Path)
			if err != nil {
				c.store.Remove(event.Path)
				continue
			}
			if c.filter.Indexable(event.Path, info) {
				reindex = append(reindex, event.Path)
			} else {
				// Became ineligible, e.g. grew past the size ceiling.
				c.store.Remove(event.Path)
			}
		}
	}

	if len(reindex) > 0 {
		if _, err := c.indexer.IndexBatch(ctx, reindex); err != nil {
			slog.Warn("re-index after change failed", slog.String("error", err.Error()))
		}
	}
}

// rescanSubtree enumerates and indexes everything under a new directory.
func (c *Coordinator) rescanSubtree(ctx context.Context, root string) {
	results, err := c.scanner.Scan(ctx, root)
	if err != nil {
		slog.Warn("subtree rescan failed",
			slog.String("root", root), slog.String("error", err.Error()))
		return
	}

	var paths []string
	for result := range results {
		if result.Err == nil && result.File != nil {
			paths = append(paths, result.File.Path)
		}
	}
	if len(paths) > 0 {
		if _, err := c.indexer.IndexBatch(ctx, paths); err != nil {
			slog.Warn("subtree re-index failed", slog.String("error", err.Error()))
		}
	}
}
