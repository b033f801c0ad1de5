// Package store holds the authoritative in-memory collection of indexed
// documents. All mutation is serialized through the store; readers operate
// against snapshots and never observe a document mid-replacement.
package store

import (
	"fmt"
	"time"

	"github.com/Atchoum23/Thea-sub019/internal/scanner"
)

// Document is the unit of indexing. Content and Embedding are write-once:
// re-indexing a path produces a new Document value, never an in-place
// mutation, so concurrent readers always see a complete document.
type Document struct {
	// ID is an opaque unique identifier, stable for the entry's lifetime.
	ID string

	// Path is the canonical filesystem location and the natural key:
	// at most one live document per path.
	Path string

	// DisplayName is the last path component, used for filename scoring.
	DisplayName string

	// Content is the extracted UTF-8 text.
	Content string

	// Embedding is the L2-normalized vector, or the zero vector when no
	// embedding is available.
	Embedding []float32

	// FileType is the closed classification derived from the extension.
	FileType scanner.FileType

	// EmbeddedWith names the embedder family that produced the vector.
	EmbeddedWith string

	SizeBytes    int64
	LastModified time.Time
	IndexedAt    time.Time
}

// Statistics summarizes the store contents.
type Statistics struct {
	TotalFiles     int
	TotalSizeBytes int64
	CountsByType   map[scanner.FileType]int
	// OldestModified and NewestModified bound the LastModified range.
	// Zero when the store is empty.
	OldestModified time.Time
	NewestModified time.Time
}

// ErrDimensionMismatch indicates a document embedding whose dimension does
// not match the store's fixed dimension.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
