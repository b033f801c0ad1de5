package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atchoum23/Thea-sub019/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, int64(1<<20), cfg.Filter.MaxFileSizeBytes)
	assert.Positive(t, cfg.Indexing.BatchSize)
	assert.Positive(t, cfg.Embedding.Dimensions)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	// Given: a customized config saved to disk
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Scan.Roots = []string{"/data/docs"}
	cfg.Filter.MaxFileSizeBytes = 2048
	cfg.Search.SemanticTopK = 7
	require.NoError(t, cfg.Save(path))

	// When: it is loaded back
	loaded, err := Load(path)
	require.NoError(t, err)

	// Then: the customized values survive
	assert.Equal(t, []string{"/data/docs"}, loaded.Scan.Roots)
	assert.Equal(t, int64(2048), loaded.Filter.MaxFileSizeBytes)
	assert.Equal(t, 7, loaded.Search.SemanticTopK)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigNotFound))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan: [not: closed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Default()
	cfg.Filter.MaxFileSizeBytes = -1
	require.NoError(t, cfg.Save(path))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigInvalid))
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero max file size", func(c *Config) { c.Filter.MaxFileSizeBytes = 0 }},
		{"zero batch size", func(c *Config) { c.Indexing.BatchSize = 0 }},
		{"negative workers", func(c *Config) { c.Indexing.MaxWorkers = -1 }},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }},
		{"zero top k", func(c *Config) { c.Search.SemanticTopK = 0 }},
		{"bad duration", func(c *Config) { c.Watcher.Debounce = "fast" }},
		{"short window above medium", func(c *Config) {
			c.Search.RecencyShort = "100h"
			c.Search.RecencyMedium = "10h"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDurationAccessors_FallBackOnGarbage(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Timeout = "not-a-duration"
	cfg.Watcher.Debounce = ""

	assert.Equal(t, 10*time.Second, cfg.Embedding.EmbedTimeout())
	assert.Equal(t, 200*time.Millisecond, cfg.Watcher.DebounceWindow())
}

func TestWorkers_DefaultsToNumCPU(t *testing.T) {
	cfg := Default()
	cfg.Indexing.MaxWorkers = 0
	assert.Positive(t, cfg.Indexing.Workers())

	cfg.Indexing.MaxWorkers = 3
	assert.Equal(t, 3, cfg.Indexing.Workers())
}

func TestAllowedExtensions_UnionsCategories(t *testing.T) {
	fc := FilterConfig{
		CodeExtensions: []string{".go"},
		DataExtensions: []string{".json"},
		TextExtensions: []string{".md", ".txt"},
	}

	allowed := fc.AllowedExtensions()
	assert.Len(t, allowed, 4)
	assert.Contains(t, allowed, ".md")
	assert.NotContains(t, allowed, ".png")
}
