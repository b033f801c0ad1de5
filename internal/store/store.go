package store

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/Atchoum23/Thea-sub019/internal/scanner"
)

// Store owns the document collection. A single mutex serializes all writers;
// batch indexer workers never touch the collection directly, they hand
// completed documents to UpsertBatch which applies them one at a time.
type Store struct {
	mu   sync.RWMutex
	dims int

	// byPath maps a document path to its position in docs.
	byPath map[string]int
	// docs preserves insertion order; lexical search returns index order.
	docs []*Document
}

// New creates a Store with a fixed embedding dimension.
func New(dims int) *Store {
	return &Store{
		dims:   dims,
		byPath: make(map[string]int),
	}
}

// Upsert inserts doc, atomically replacing any existing document with the
// same path. The embedding must have the store dimension or be empty
// (treated as the zero vector).
func (s *Store) Upsert(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertLocked(doc)
}

// UpsertBatch commits a batch of documents as one serialized operation, so
// a concurrent search snapshot sees either none or all of the batch's
// per-path final states.
func (s *Store) UpsertBatch(docs []*Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, doc := range docs {
		if err := s.upsertLocked(doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertLocked(doc *Document) error {
	if len(doc.Embedding) != 0 && len(doc.Embedding) != s.dims {
		return ErrDimensionMismatch{Expected: s.dims, Got: len(doc.Embedding)}
	}
	if len(doc.Embedding) == 0 {
		doc.Embedding = make([]float32, s.dims)
	}

	if i, ok := s.byPath[doc.Path]; ok {
		s.docs[i] = doc
		return nil
	}
	s.byPath[doc.Path] = len(s.docs)
	s.docs = append(s.docs, doc)
	return nil
}

// Remove deletes the document for path, if present.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(path)
}

// RemovePrefix deletes every document whose path equals prefix or lies
// under it. Used when a watched directory is deleted or excluded.
func (s *Store) RemovePrefix(prefix string) int {
	prefix = filepath.Clean(prefix)
	under := prefix + string(filepath.Separator)

	s.mu.Lock()
	defer s.mu.Unlock()

	var doomed []string
	for path := range s.byPath {
		if path == prefix || strings.HasPrefix(path, under) {
			doomed = append(doomed, path)
		}
	}
	for _, path := range doomed {
		s.removeLocked(path)
	}
	return len(doomed)
}

func (s *Store) removeLocked(path string) {
	i, ok := s.byPath[path]
	if !ok {
		return
	}
	delete(s.byPath, path)
	s.docs = append(s.docs[:i], s.docs[i+1:]...)
	for j := i; j < len(s.docs); j++ {
		s.byPath[s.docs[j].Path] = j
	}
}

// Get returns the document for path, or nil.
func (s *Store) Get(path string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.byPath[path]; ok {
		return s.docs[i]
	}
	return nil
}

// Snapshot returns a read-only copy of the collection in insertion order.
// The slice is the caller's to keep; the documents themselves are immutable
// by convention, so the snapshot is insulated from concurrent mutation.
func (s *Store) Snapshot() []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Len returns the number of live documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Dimensions returns the store's fixed embedding dimension.
func (s *Store) Dimensions() int {
	return s.dims
}

// Statistics computes summary statistics over the live documents.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Statistics{
		TotalFiles:   len(s.docs),
		CountsByType: make(map[scanner.FileType]int),
	}
	for _, doc := range s.docs {
		stats.TotalSizeBytes += doc.SizeBytes
		stats.CountsByType[doc.FileType]++
		if stats.OldestModified.IsZero() || doc.LastModified.Before(stats.OldestModified) {
			stats.OldestModified = doc.LastModified
		}
		if doc.LastModified.After(stats.NewestModified) {
			stats.NewestModified = doc.LastModified
		}
	}
	return stats
}
