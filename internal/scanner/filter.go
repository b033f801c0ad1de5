package scanner

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Atchoum23/Thea-sub019/internal/config"
)

// Filter decides whether a path is indexable. It is a pure predicate over
// its configuration: exclusion prefixes, an extension allow-list, and a
// size ceiling. It performs no I/O.
type Filter struct {
	mu       sync.RWMutex
	exclude  []string
	allowed  map[string]struct{}
	maxBytes int64
}

// NewFilter builds a filter from the filter and scan configuration.
func NewFilter(fc config.FilterConfig, sc config.ScanConfig) *Filter {
	f := &Filter{
		allowed:  fc.AllowedExtensions(),
		maxBytes: fc.MaxFileSizeBytes,
	}
	for _, p := range sc.Exclude {
		f.exclude = append(f.exclude, filepath.Clean(p))
	}
	return f
}

// Indexable reports whether the file at path with the given metadata
// passes the filter.
func (f *Filter) Indexable(path string, info fs.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if f.Excluded(path) {
		return false
	}
	if info.Size() > f.maxBytes {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	f.mu.RLock()
	_, ok := f.allowed[ext]
	f.mu.RUnlock()
	return ok
}

// Excluded reports whether path falls under any configured exclusion prefix.
// Directories matching an exclusion are pruned entirely during enumeration.
func (f *Filter) Excluded(path string) bool {
	path = filepath.Clean(path)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, prefix := range f.exclude {
		if path == prefix || strings.HasPrefix(path, prefix+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// AddExclusion adds a new exclusion prefix at runtime.
func (f *Filter) AddExclusion(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exclude = append(f.exclude, filepath.Clean(path))
}

// MaxFileSize returns the configured size ceiling in bytes.
func (f *Filter) MaxFileSize() int64 {
	return f.maxBytes
}
