// Package search answers queries against an index store snapshot.
//
// Semantic search embeds the query and ranks documents by cosine similarity
// blended with relevance bonuses. Lexical search is a provider-independent
// case-insensitive substring match. A query embedded with the fallback
// method is only semantically meaningful against documents embedded the
// same way; the engine allows the comparison and the degradation is
// documented rather than hidden.
package search

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Atchoum23/Thea-sub019/internal/config"
	"github.com/Atchoum23/Thea-sub019/internal/embed"
	"github.com/Atchoum23/Thea-sub019/internal/store"
)

// Mode selects the search strategy.
type Mode string

const (
	// ModeSemantic ranks by cosine similarity plus relevance bonuses.
	ModeSemantic Mode = "semantic"
	// ModeLexical matches substrings case-insensitively, in index order.
	ModeLexical Mode = "lexical"
)

// Result is a single ranked search result.
type Result struct {
	// Doc is the matched document.
	Doc *store.Document
	// Score is the combined relevance score used for ranking.
	Score float64
	// Similarity is the raw cosine similarity (semantic mode only).
	Similarity float64
}

// Engine executes searches against the store.
type Engine struct {
	store    *store.Store
	embedder embed.Embedder
	cfg      config.SearchConfig
	// now is swappable for recency tests.
	now func() time.Time
}

// NewEngine creates a search engine over the store.
func NewEngine(st *store.Store, embedder embed.Embedder, cfg config.SearchConfig) *Engine {
	return &Engine{
		store:    st,
		embedder: embedder,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Search runs a query in the given mode. topK <= 0 selects the configured
// default for that mode. An empty query or an empty index returns an empty
// result list, never an error.
func (e *Engine) Search(ctx context.Context, query string, mode Mode, topK int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	snapshot := e.store.Snapshot()
	if len(snapshot) == 0 {
		return []Result{}, nil
	}

	switch mode {
	case ModeLexical:
		if topK <= 0 {
			topK = e.cfg.LexicalTopK
		}
		return e.lexical(query, snapshot, topK), nil
	default:
		if topK <= 0 {
			topK = e.cfg.SemanticTopK
		}
		return e.semantic(ctx, query, snapshot, topK)
	}
}

// semantic embeds the query and ranks the snapshot by blended score.
func (e *Engine) semantic(ctx context.Context, query string, snapshot []*store.Document, topK int) ([]Result, error) {
	queryVec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		// The embedder chain already exhausted its fallback; degrade to
		// lexical matching rather than failing the search.
		slog.Warn("query embedding failed, degrading to lexical search",
			slog.String("error", err.Error()))
		return e.lexical(query, snapshot, topK), nil
	}

	lowerQuery := strings.ToLower(query)
	now := e.now()

	results := make([]Result, 0, len(snapshot))
	for _, doc := range snapshot {
		sim := Cosine(queryVec, doc.Embedding)
		results = append(results, Result{
			Doc:        doc,
			Similarity: sim,
			Score:      sim + e.relevanceBonus(doc, lowerQuery, now),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		// Equal scores prefer the more recently modified document.
		return results[i].Doc.LastModified.After(results[j].Doc.LastModified)
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// relevanceBonus computes the heuristic additions to raw similarity:
// a filename-match bonus, a capped content-occurrence bonus, and a
// two-tier recency bonus.
func (e *Engine) relevanceBonus(doc *store.Document, lowerQuery string, now time.Time) float64 {
	var bonus float64

	if strings.Contains(strings.ToLower(doc.DisplayName), lowerQuery) {
		bonus += e.cfg.FilenameBonus
	}

	if occurrences := strings.Count(strings.ToLower(doc.Content), lowerQuery); occurrences > 0 {
		if occurrences > e.cfg.ContentBonusCap {
			occurrences = e.cfg.ContentBonusCap
		}
		bonus += float64(occurrences) * e.cfg.ContentBonus
	}

	age := now.Sub(doc.LastModified)
	switch {
	case age <= e.cfg.RecencyShortWindow():
		bonus += e.cfg.RecencyShortBonus
	case age <= e.cfg.RecencyMediumWindow():
		bonus += e.cfg.RecencyMediumBonus
	}

	return bonus
}

// lexical returns documents whose content contains the query,
// case-insensitively, in index order without further ranking.
func (e *Engine) lexical(query string, snapshot []*store.Document, topK int) []Result {
	lowerQuery := strings.ToLower(query)

	results := make([]Result, 0, topK)
	for _, doc := range snapshot {
		if !strings.Contains(strings.ToLower(doc.Content), lowerQuery) {
			continue
		}
		results = append(results, Result{Doc: doc, Score: 1})
		if len(results) == topK {
			break
		}
	}
	return results
}

// Cosine computes cosine similarity between two vectors:
// dot(a,b) / (|a|*|b|). Similarity against a zero-magnitude vector is 0,
// never NaN. Mismatched lengths also score 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
