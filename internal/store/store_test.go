package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atchoum23/Thea-sub019/internal/scanner"
)

func doc(path string, dims int) *Document {
	return &Document{
		ID:          path,
		Path:        path,
		DisplayName: filepath.Base(path),
		Content:     "content of " + path,
		Embedding:   make([]float32, dims),
		FileType:    scanner.FileTypeText,
		SizeBytes:   int64(len(path)),
		IndexedAt:   time.Now(),
	}
}

func TestStore_PathIsNaturalKey(t *testing.T) {
	// Given: a document already indexed at a path
	s := New(4)
	first := doc("/tmp/a.md", 4)
	first.Content = "old"
	require.NoError(t, s.Upsert(first))

	// When: a new version at the same path is upserted
	second := doc("/tmp/a.md", 4)
	second.Content = "new"
	require.NoError(t, s.Upsert(second))

	// Then: exactly one document exists, holding the new content
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "new", s.Get("/tmp/a.md").Content)
}

func TestStore_UpsertBatchPreservesInsertionOrder(t *testing.T) {
	s := New(2)
	batch := []*Document{doc("/a", 2), doc("/b", 2), doc("/c", 2)}
	require.NoError(t, s.UpsertBatch(batch))

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "/a", snap[0].Path)
	assert.Equal(t, "/b", snap[1].Path)
	assert.Equal(t, "/c", snap[2].Path)
}

func TestStore_DimensionMismatchRejected(t *testing.T) {
	s := New(4)
	bad := doc("/tmp/a.md", 8)

	err := s.Upsert(bad)
	require.Error(t, err)
	assert.ErrorAs(t, err, &ErrDimensionMismatch{})
	assert.Equal(t, 0, s.Len())
}

func TestStore_EmptyEmbeddingBecomesZeroVector(t *testing.T) {
	s := New(4)
	d := doc("/tmp/a.md", 4)
	d.Embedding = nil
	require.NoError(t, s.Upsert(d))

	got := s.Get("/tmp/a.md")
	require.NotNil(t, got)
	assert.Equal(t, make([]float32, 4), got.Embedding)
}

func TestStore_SnapshotIsolation(t *testing.T) {
	// Given: a snapshot taken before further writes
	s := New(2)
	require.NoError(t, s.Upsert(doc("/a", 2)))
	snap := s.Snapshot()

	// When: documents are added and removed afterwards
	require.NoError(t, s.Upsert(doc("/b", 2)))
	s.Remove("/a")

	// Then: the snapshot is unaffected
	require.Len(t, snap, 1)
	assert.Equal(t, "/a", snap[0].Path)
	assert.Equal(t, 1, s.Len())
}

func TestStore_RemoveRebuildsIndices(t *testing.T) {
	s := New(2)
	for _, p := range []string{"/a", "/b", "/c", "/d"} {
		require.NoError(t, s.Upsert(doc(p, 2)))
	}

	s.Remove("/b")

	assert.Nil(t, s.Get("/b"))
	assert.Equal(t, "/c", s.Get("/c").Path)
	assert.Equal(t, "/d", s.Get("/d").Path)
	assert.Equal(t, 3, s.Len())

	// Removing a path twice is a no-op.
	s.Remove("/b")
	assert.Equal(t, 3, s.Len())
}

func TestStore_RemovePrefix(t *testing.T) {
	s := New(2)
	paths := []string{
		"/data/docs/a.md",
		"/data/docs/sub/b.md",
		"/data/docsother/c.md",
		"/data/keep.md",
	}
	for _, p := range paths {
		require.NoError(t, s.Upsert(doc(p, 2)))
	}

	removed := s.RemovePrefix("/data/docs")

	assert.Equal(t, 2, removed)
	assert.Nil(t, s.Get("/data/docs/a.md"))
	assert.Nil(t, s.Get("/data/docs/sub/b.md"))
	assert.NotNil(t, s.Get("/data/docsother/c.md"), "sibling with shared name prefix survives")
	assert.NotNil(t, s.Get("/data/keep.md"))
}

func TestStore_RemovePrefixExactFile(t *testing.T) {
	s := New(2)
	require.NoError(t, s.Upsert(doc("/data/a.md", 2)))

	assert.Equal(t, 1, s.RemovePrefix("/data/a.md"))
	assert.Equal(t, 0, s.Len())
}

func TestStore_Statistics(t *testing.T) {
	s := New(2)
	old := doc("/a.md", 2)
	old.FileType = scanner.FileTypeMarkdown
	old.SizeBytes = 100
	old.LastModified = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := doc("/b.go", 2)
	recent.FileType = scanner.FileTypeCode
	recent.SizeBytes = 50
	recent.LastModified = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertBatch([]*Document{old, recent}))

	stats := s.Statistics()

	assert.Equal(t, 2, stats.TotalFiles)
	assert.EqualValues(t, 150, stats.TotalSizeBytes)
	assert.Equal(t, 1, stats.CountsByType[scanner.FileTypeMarkdown])
	assert.Equal(t, 1, stats.CountsByType[scanner.FileTypeCode])
	assert.Equal(t, old.LastModified, stats.OldestModified)
	assert.Equal(t, recent.LastModified, stats.NewestModified)
}

func TestStore_ConcurrentReadersDuringBatchWrites(t *testing.T) {
	s := New(2)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			_ = s.Upsert(doc(fmt.Sprintf("/f%03d", i), 2))
		}
	}()

	for i := 0; i < 100; i++ {
		snap := s.Snapshot()
		// Snapshots are always internally consistent.
		for _, d := range snap {
			assert.NotNil(t, d)
		}
		_ = s.Len()
	}
	<-done
	assert.Equal(t, 100, s.Len())
}
