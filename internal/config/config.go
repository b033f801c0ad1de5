// Package config defines the engine configuration.
// Configuration is an explicit value passed to each component at
// construction time; nothing in the engine reads ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Atchoum23/Thea-sub019/internal/errors"
)

// Config is the complete configuration for the indexing engine.
type Config struct {
	Version   int             `yaml:"version"`
	Scan      ScanConfig      `yaml:"scan"`
	Filter    FilterConfig    `yaml:"filter"`
	Indexing  IndexingConfig  `yaml:"indexing"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	LogLevel  string          `yaml:"log_level"`
}

// ScanConfig configures which roots are scanned and which paths are excluded.
type ScanConfig struct {
	// Roots are the filesystem roots to index.
	Roots []string `yaml:"roots"`
	// Exclude are path prefixes that are never indexed or descended into.
	Exclude []string `yaml:"exclude"`
}

// FilterConfig configures the path filter.
type FilterConfig struct {
	// CodeExtensions are source-code extensions to index.
	CodeExtensions []string `yaml:"code_extensions"`
	// DataExtensions are structured-data extensions to index.
	DataExtensions []string `yaml:"data_extensions"`
	// TextExtensions are generic document extensions to index.
	TextExtensions []string `yaml:"text_extensions"`
	// MaxFileSizeBytes is the size ceiling; larger files are skipped.
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes"`
}

// IndexingConfig configures batch indexing.
type IndexingConfig struct {
	// BatchSize is the number of paths handed to one IndexBatch call.
	BatchSize int `yaml:"batch_size"`
	// MaxWorkers caps concurrent per-file indexing tasks within a batch.
	// 0 means runtime.NumCPU().
	MaxWorkers int `yaml:"max_workers"`
}

// EmbeddingConfig configures the embedding provider boundary.
type EmbeddingConfig struct {
	// Endpoint is the embedding service URL (Ollama-compatible REST API).
	Endpoint string `yaml:"endpoint"`
	// Model is the embedding model name.
	Model string `yaml:"model"`
	// Dimensions is the embedding vector dimension, fixed per deployment.
	Dimensions int `yaml:"dimensions"`
	// Timeout is the per-call timeout before falling back (e.g. "10s").
	Timeout string `yaml:"timeout"`
	// CacheSize is the number of embeddings kept in the LRU cache.
	CacheSize int `yaml:"cache_size"`
}

// SearchConfig configures result limits and relevance-scoring weights.
type SearchConfig struct {
	// SemanticTopK is the default result count for semantic search.
	SemanticTopK int `yaml:"semantic_top_k"`
	// LexicalTopK is the default result count for lexical search.
	LexicalTopK int `yaml:"lexical_top_k"`

	// FilenameBonus is added when the filename contains the query.
	FilenameBonus float64 `yaml:"filename_bonus"`
	// ContentBonus is added per substring occurrence of the query in content.
	ContentBonus float64 `yaml:"content_bonus"`
	// ContentBonusCap caps the number of occurrences counted.
	ContentBonusCap int `yaml:"content_bonus_cap"`

	// RecencyShort is the window for the higher recency bonus (e.g. "168h").
	RecencyShort string `yaml:"recency_short"`
	// RecencyShortBonus is added when modified within RecencyShort.
	RecencyShortBonus float64 `yaml:"recency_short_bonus"`
	// RecencyMedium is the window for the smaller recency bonus (e.g. "720h").
	RecencyMedium string `yaml:"recency_medium"`
	// RecencyMediumBonus is added when modified within RecencyMedium.
	RecencyMediumBonus float64 `yaml:"recency_medium_bonus"`
}

// WatcherConfig configures filesystem watching.
type WatcherConfig struct {
	// Enabled turns change watching on.
	Enabled bool `yaml:"enabled"`
	// Debounce is the event coalescing window (e.g. "200ms").
	Debounce string `yaml:"debounce"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			Roots:   []string{},
			Exclude: []string{},
		},
		Filter: FilterConfig{
			CodeExtensions: []string{
				".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".rb", ".rs",
				".java", ".kt", ".c", ".h", ".cpp", ".hpp", ".cs", ".swift",
				".sh", ".sql", ".html", ".css",
			},
			DataExtensions: []string{".json", ".yaml", ".yml", ".toml", ".xml", ".csv"},
			TextExtensions: []string{".md", ".markdown", ".txt", ".rst", ".pdf"},
			MaxFileSizeBytes: 1 << 20, // 1 MiB
		},
		Indexing: IndexingConfig{
			BatchSize:  32,
			MaxWorkers: runtime.NumCPU(),
		},
		Embedding: EmbeddingConfig{
			Endpoint:   "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 256,
			Timeout:    "10s",
			CacheSize:  4096,
		},
		Search: SearchConfig{
			SemanticTopK:       10,
			LexicalTopK:        20,
			FilenameBonus:      0.3,
			ContentBonus:       0.05,
			ContentBonusCap:    10,
			RecencyShort:       "168h", // 7 days
			RecencyShortBonus:  0.15,
			RecencyMedium:      "720h", // 30 days
			RecencyMediumBonus: 0.05,
		},
		Watcher: WatcherConfig{
			Enabled:  true,
			Debounce: "200ms",
		},
		LogLevel: "info",
	}
}

// Load reads a YAML config file and fills unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			fmt.Sprintf("config not found: %s", path), err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("parse config %s: %v", path, err), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories as needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Filter.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("filter.max_file_size_bytes must be positive, got %d", c.Filter.MaxFileSizeBytes)
	}
	if c.Indexing.BatchSize <= 0 {
		return fmt.Errorf("indexing.batch_size must be positive, got %d", c.Indexing.BatchSize)
	}
	if c.Indexing.MaxWorkers < 0 {
		return fmt.Errorf("indexing.max_workers must not be negative, got %d", c.Indexing.MaxWorkers)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Search.SemanticTopK <= 0 || c.Search.LexicalTopK <= 0 {
		return fmt.Errorf("search top_k values must be positive")
	}
	if c.Search.ContentBonusCap < 0 {
		return fmt.Errorf("search.content_bonus_cap must not be negative, got %d", c.Search.ContentBonusCap)
	}
	for name, d := range map[string]string{
		"embedding.timeout":     c.Embedding.Timeout,
		"search.recency_short":  c.Search.RecencyShort,
		"search.recency_medium": c.Search.RecencyMedium,
		"watcher.debounce":      c.Watcher.Debounce,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: invalid duration %q", name, d)
		}
	}
	if short, medium := c.Search.RecencyShortWindow(), c.Search.RecencyMediumWindow(); short > medium {
		return fmt.Errorf("search.recency_short %s must not exceed recency_medium %s", short, medium)
	}
	return nil
}

// EmbedTimeout returns the parsed embedding call timeout.
func (c EmbeddingConfig) EmbedTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// RecencyShortWindow returns the parsed short recency window.
func (c SearchConfig) RecencyShortWindow() time.Duration {
	return parseDuration(c.RecencyShort, 7*24*time.Hour)
}

// RecencyMediumWindow returns the parsed medium recency window.
func (c SearchConfig) RecencyMediumWindow() time.Duration {
	return parseDuration(c.RecencyMedium, 30*24*time.Hour)
}

// DebounceWindow returns the parsed watcher debounce window.
func (c WatcherConfig) DebounceWindow() time.Duration {
	return parseDuration(c.Debounce, 200*time.Millisecond)
}

// Workers returns the effective worker cap for batch indexing.
func (c IndexingConfig) Workers() int {
	if c.MaxWorkers <= 0 {
		return runtime.NumCPU()
	}
	return c.MaxWorkers
}

// AllowedExtensions returns the union of all configured extension lists.
func (c FilterConfig) AllowedExtensions() map[string]struct{} {
	out := make(map[string]struct{},
		len(c.CodeExtensions)+len(c.DataExtensions)+len(c.TextExtensions))
	for _, list := range [][]string{c.CodeExtensions, c.DataExtensions, c.TextExtensions} {
		for _, ext := range list {
			out[ext] = struct{}{}
		}
	}
	return out
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
