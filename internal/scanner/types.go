// Package scanner discovers indexable files under configured roots.
// It applies the path filter eagerly during traversal so excluded subtrees
// are never descended into, and streams candidates over a channel.
package scanner

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType is the closed classification of an indexed file,
// derived from its extension at index time.
type FileType string

const (
	// FileTypeCode represents source code files.
	FileTypeCode FileType = "code"
	// FileTypeMarkdown represents markdown documentation files.
	FileTypeMarkdown FileType = "markdown"
	// FileTypePDF represents pdf-like documents indexed as raw text.
	FileTypePDF FileType = "pdf"
	// FileTypeData represents structured-data files (JSON, YAML, CSV, ...).
	FileTypeData FileType = "data"
	// FileTypeText represents plain text files.
	FileTypeText FileType = "text"
)

// FileInfo contains metadata about a discovered file.
type FileInfo struct {
	Path    string    // Absolute, cleaned path
	Size    int64     // File size in bytes
	ModTime time.Time // Last modification time
	Type    FileType  // Closed classification
}

// Result is returned from the scanner channel. Warnings about unreadable
// directories arrive as Err with File unset; enumeration continues.
type Result struct {
	File *FileInfo
	Err  error
}

// fileTypeMap maps file extensions to file types.
var fileTypeMap = map[string]FileType{
	".go": FileTypeCode, ".py": FileTypeCode, ".js": FileTypeCode,
	".jsx": FileTypeCode, ".ts": FileTypeCode, ".tsx": FileTypeCode,
	".rb": FileTypeCode, ".rs": FileTypeCode, ".java": FileTypeCode,
	".kt": FileTypeCode, ".c": FileTypeCode, ".h": FileTypeCode,
	".cpp": FileTypeCode, ".hpp": FileTypeCode, ".cs": FileTypeCode,
	".swift": FileTypeCode, ".sh": FileTypeCode, ".sql": FileTypeCode,
	".html": FileTypeCode, ".css": FileTypeCode,

	".md": FileTypeMarkdown, ".markdown": FileTypeMarkdown, ".rst": FileTypeMarkdown,

	".pdf": FileTypePDF,

	".json": FileTypeData, ".yaml": FileTypeData, ".yml": FileTypeData,
	".toml": FileTypeData, ".xml": FileTypeData, ".csv": FileTypeData,
}

// DetectFileType classifies a path by extension.
// Unknown extensions classify as plain text.
func DetectFileType(path string) FileType {
	ext := strings.ToLower(filepath.Ext(path))
	if ft, ok := fileTypeMap[ext]; ok {
		return ft
	}
	return FileTypeText
}

// bundleSuffixes are package-like directory bundles that are opaque to the
// index and never descended into.
var bundleSuffixes = []string{
	".app", ".bundle", ".framework", ".xcodeproj", ".xcassets", ".photoslibrary",
}

// isBundleDir reports whether the directory name looks like a package bundle.
func isBundleDir(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range bundleSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}
