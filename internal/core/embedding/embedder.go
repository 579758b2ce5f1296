package embedding

import (
	"context"
	"errors"
	"fmt"

	"docgen/config"
	"docgen/pkg/logger"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrUnavailable marks a failed or empty remote embedding call. Callers
// treat it as a per-item error in batch work and as a typed failure in
// search, never as a crash.
var ErrUnavailable = errors.New("embedding unavailable")

// inputLimitRunes bounds the text sent to the remote model; embedding a
// bounded prefix keeps remote-call cost flat per chunk.
const inputLimitRunes = 500

// batchSize caps inputs per embeddings request.
const batchSize = 100

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Service calls an OpenAI-compatible embeddings endpoint.
type Service struct {
	cfg    config.OpenAIConfig
	client openai.Client
}

func NewService(cfg config.OpenAIConfig) *Service {
	opts := []option.RequestOption{option.WithAPIKey(cfg.Key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Service{cfg: cfg, client: openai.NewClient(opts...)}
}

// Embed returns the vector for a single text, truncated to the input
// limit before the remote call.
func (s *Service) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := s.EmbedBatch(ctx, []string{truncateRunes(text, inputLimitRunes)})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrUnavailable)
	}
	return vectors[0], nil
}

// EmbedBatch embeds inputs in request batches, preserving order. Inputs
// are truncated to the input limit individually.
func (s *Service) EmbedBatch(ctx context.Context, inputs []string) ([][]float64, error) {
	if len(inputs) == 0 {
		return [][]float64{}, nil
	}

	var all [][]float64
	for i := 0; i < len(inputs); i += batchSize {
		j := i + batchSize
		if j > len(inputs) {
			j = len(inputs)
		}
		batch := make([]string, 0, j-i)
		for _, in := range inputs[i:j] {
			batch = append(batch, truncateRunes(in, inputLimitRunes))
		}

		vectors, err := s.embedBatch(ctx, batch)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"model":       s.cfg.EmbeddingModel,
				"batch_start": i,
				"batch_end":   j,
				"error":       err,
			}).Errorf("%v: embedding batch failed", config.ModuleEmbedding)
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		all = append(all, vectors...)
	}
	return all, nil
}

func (s *Service) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	reqBody := embeddingRequest{Model: s.cfg.EmbeddingModel, Input: batch}
	var out embeddingResponse
	if err := s.client.Post(ctx, "/embeddings", reqBody, &out); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, errors.New(out.Error.Message)
	}
	vectors := make([][]float64, len(out.Data))
	for i := range out.Data {
		vectors[i] = out.Data[i].Embedding
	}
	return vectors, nil
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
