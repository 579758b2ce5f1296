package embed

import (
	"context"
	"encoding/json"

	"docgen/config"
	"docgen/internal/database"
	"docgen/internal/database/model"
	"docgen/pkg/logger"
)

// Summary aggregates a batch embedding run.
type Summary struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
	Total     int `json:"total"`
}

// Embedder produces a vector for one text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Service fills in vectors for chunks still awaiting embedding.
type Service struct {
	store    *database.Store
	embedder Embedder
}

func NewService(store *database.Store, embedder Embedder) *Service {
	return &Service{store: store, embedder: embedder}
}

// EmbedAll processes every awaiting chunk sequentially. Each chunk
// transitions to ready on its own; a remote failure is counted per chunk
// and never aborts the run. Re-running after a partial failure only
// touches the chunks still awaiting.
func (s *Service) EmbedAll(ctx context.Context) (Summary, error) {
	chunks, err := s.store.ChunksByStatus(ctx, model.ChunkStatusAwaitingEmbedding)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(chunks)}
	logger.Info("%v: embedding %d chunks", config.ModuleEmbedding, len(chunks))

	for _, ch := range chunks {
		vec, err := s.embedder.Embed(ctx, ch.TextContent)
		if err != nil {
			logger.Error(err, "%v: chunk %s failed", config.ModuleEmbedding, ch.ChunkID)
			summary.Errors++
			continue
		}

		encoded, err := json.Marshal(vec)
		if err != nil {
			summary.Errors++
			continue
		}
		if err := s.store.SetChunkEmbedding(ctx, ch.ChunkID, string(encoded)); err != nil {
			logger.Error(err, "%v: persist chunk %s failed", config.ModuleEmbedding, ch.ChunkID)
			summary.Errors++
			continue
		}
		summary.Processed++
	}
	return summary, nil
}
