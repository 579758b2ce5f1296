package retriever

import (
	"context"
	"encoding/json"
	"fmt"

	"docgen/config"
	"docgen/internal/core/embedding"
	"docgen/internal/database"
	"docgen/pkg/logger"
)

// previewRunes bounds the text preview carried in each result.
const previewRunes = 200

// defaultTopK applies when the caller passes a non-positive result count.
const defaultTopK = 5

// ErrEmbeddingUnavailable is returned when the query vector cannot be
// obtained. Callers can distinguish it from a genuinely empty result set.
var ErrEmbeddingUnavailable = embedding.ErrUnavailable

// Embedder produces a query vector for free text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Searcher ranks stored chunks against a natural-language query.
type Searcher struct {
	store    *database.Store
	embedder Embedder
	ranker   Ranker
}

func NewSearcher(store *database.Store, embedder Embedder, ranker Ranker) *Searcher {
	if ranker == nil {
		ranker = LinearRanker{}
	}
	return &Searcher{store: store, embedder: embedder, ranker: ranker}
}

// Search embeds the query, scans every ready chunk (optionally restricted
// by report year) and returns the top-k by cosine similarity. A stored
// vector that cannot be decoded is skipped and counted, never fatal.
func (s *Searcher) Search(ctx context.Context, query string, topK int, yearFilter *int) ([]Result, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.store.ScanReadyChunks(ctx, yearFilter)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}

	candidates := make([]Candidate, 0, len(chunks))
	malformed := 0
	for _, ch := range chunks {
		if ch.Embedding == nil {
			malformed++
			continue
		}
		var v []float64
		if err := json.Unmarshal([]byte(*ch.Embedding), &v); err != nil {
			malformed++
			continue
		}
		candidates = append(candidates, Candidate{
			ChunkID:   ch.ChunkID,
			ReportID:  ch.ReportID,
			Heading:   ch.MainHeading,
			PageRange: ch.PageRange,
			Text:      ch.TextContent,
			Vector:    v,
		})
	}
	if malformed > 0 {
		logger.WithFields(map[string]interface{}{
			"malformed": malformed,
			"scanned":   len(chunks),
		}).Warnf("%v: skipped undecodable vectors", config.ModuleSearch)
	}

	ranked := s.ranker.Rank(vec, candidates)
	if topK > len(ranked) {
		topK = len(ranked)
	}

	results := make([]Result, 0, topK)
	for _, r := range ranked[:topK] {
		results = append(results, Result{
			ChunkID:         r.ChunkID,
			ReportID:        r.ReportID,
			SimilarityScore: r.Score,
			Text:            truncateRunes(r.Text, previewRunes),
			Heading:         r.Heading,
			PageRange:       r.PageRange,
		})
	}
	return results, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
