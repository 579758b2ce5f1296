package embedding

import (
	"context"
	"strings"
	"testing"

	"docgen/config"
)

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 500); got != "short" {
		t.Errorf("short input changed: %q", got)
	}

	long := strings.Repeat("ü", 600)
	got := truncateRunes(long, inputLimitRunes)
	if n := len([]rune(got)); n != inputLimitRunes {
		t.Errorf("truncated to %d runes, want %d", n, inputLimitRunes)
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncation must keep the prefix intact")
	}
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	s := NewService(config.OpenAIConfig{Key: "test", EmbeddingModel: "text-embedding-3-small"})

	vectors, err := s.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty batch should not call out: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected no vectors, got %d", len(vectors))
	}
}
