package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atchoum23/Thea-sub019/internal/config"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
	return path
}

func testFilter(exclude ...string) *Filter {
	return NewFilter(
		config.FilterConfig{
			TextExtensions:   []string{".md", ".txt"},
			MaxFileSizeBytes: 1_000_000,
		},
		config.ScanConfig{Exclude: exclude},
	)
}

func statOf(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info
}

func TestFilter_ExampleScenario(t *testing.T) {
	// Given: maxFileSizeBytes = 1_000_000 and extensions {".md", ".txt"}
	dir := t.TempDir()
	aMD := writeFile(t, dir, "a.md", 500)
	bTXT := writeFile(t, dir, "b.txt", 2_000_000)
	cPNG := writeFile(t, dir, "c.png", 100)
	f := testFilter()

	// Then: only a.md is indexable
	assert.True(t, f.Indexable(aMD, statOf(t, aMD)))
	assert.False(t, f.Indexable(bTXT, statOf(t, bTXT)), "b.txt exceeds the size ceiling")
	assert.False(t, f.Indexable(cPNG, statOf(t, cPNG)), "c.png has a disallowed extension")
}

func TestFilter_ExclusionPrefix(t *testing.T) {
	dir := t.TempDir()
	inside := writeFile(t, dir, "private/notes.md", 10)
	outside := writeFile(t, dir, "public/notes.md", 10)
	f := testFilter(filepath.Join(dir, "private"))

	assert.False(t, f.Indexable(inside, statOf(t, inside)))
	assert.True(t, f.Indexable(outside, statOf(t, outside)))
	assert.True(t, f.Excluded(filepath.Join(dir, "private")))
	assert.True(t, f.Excluded(filepath.Join(dir, "private", "deep", "x.md")))
	assert.False(t, f.Excluded(filepath.Join(dir, "privateer")), "prefix match is per path component")
}

func TestFilter_AddExclusionAtRuntime(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "docs/readme.md", 10)
	f := testFilter()

	require.True(t, f.Indexable(path, statOf(t, path)))
	f.AddExclusion(filepath.Join(dir, "docs"))
	assert.False(t, f.Indexable(path, statOf(t, path)))
}

func TestFilter_ExtensionCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "README.MD", 10)
	f := testFilter()

	assert.True(t, f.Indexable(path, statOf(t, path)))
}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		path string
		want FileType
	}{
		{"main.go", FileTypeCode},
		{"notes.md", FileTypeMarkdown},
		{"report.pdf", FileTypePDF},
		{"data.json", FileTypeData},
		{"readme.txt", FileTypeText},
		{"no-extension", FileTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.path))
		})
	}
}
