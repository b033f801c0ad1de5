package scanner

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scanner enumerates candidate files under a root, applying the path filter
// during traversal. The produced sequence is lazy, finite, and
// non-restartable: consume the channel once, then call Scan again.
type Scanner struct {
	filter *Filter
}

// New creates a Scanner using the given filter.
func New(filter *Filter) *Scanner {
	return &Scanner{filter: filter}
}

// Scan walks root and streams indexable files over the returned channel.
// The channel is closed when enumeration completes or ctx is cancelled.
// A missing or non-directory root is reported synchronously; unreadable
// subdirectories are reported as recoverable warnings on the channel and
// enumeration continues with siblings.
func (s *Scanner) Scan(ctx context.Context, root string) (<-chan Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		// A single indexable file as root is still enumerable.
		results := make(chan Result, 1)
		if s.filter.Indexable(absRoot, info) {
			results <- Result{File: &FileInfo{
				Path:    absRoot,
				Size:    info.Size(),
				ModTime: info.ModTime(),
				Type:    DetectFileType(absRoot),
			}}
		}
		close(results)
		return results, nil
	}

	results := make(chan Result, 64)
	go func() {
		defer close(results)
		s.walk(ctx, absRoot, results)
	}()
	return results, nil
}

// walk performs the actual directory traversal.
func (s *Scanner) walk(ctx context.Context, absRoot string, results chan<- Result) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Unreadable entry: warn and continue with siblings.
			slog.Warn("scan warning", slog.String("path", path), slog.String("error", err.Error()))
			select {
			case results <- Result{Err: err}:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if strings.HasPrefix(name, ".") || isBundleDir(name) || s.filter.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		// Hidden files and symlinks are skipped.
		if strings.HasPrefix(name, ".") || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		if !s.filter.Indexable(path, info) {
			return nil
		}

		if isBinaryFile(path) {
			return nil
		}

		select {
		case results <- Result{File: &FileInfo{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Type:    DetectFileType(path),
		}}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && err != context.Canceled {
		select {
		case results <- Result{Err: err}:
		default:
		}
	}
}

// isBinaryFile checks if a file is binary by looking for null bytes
// in its first 512 bytes.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil {
		return false
	}
	return bytes.Contains(buf[:n], []byte{0})
}
