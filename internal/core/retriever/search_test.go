package retriever

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"docgen/internal/core/embedding"
	"docgen/internal/database"
	"docgen/internal/database/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeEmbedder struct {
	vec []float64
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	return f.vec, f.err
}

func newTestStore(t *testing.T) *database.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	store := database.NewStore(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func seedChunk(t *testing.T, store *database.Store, reportID, chunkID string, year int, vec []float64) {
	t.Helper()
	ctx := context.Background()

	exists, err := store.ReportExists(ctx, reportID)
	if err != nil {
		t.Fatalf("report exists: %v", err)
	}
	if !exists {
		report := &model.Report{ReportID: reportID, Year: year, Title: reportID}
		if err := store.CreateReportWithChunks(ctx, report, nil); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}

	chunk := model.Chunk{
		ChunkID:     chunkID,
		ReportID:    reportID,
		MainHeading: "Heading " + chunkID,
		PageRange:   "1-1",
		TextContent: "content of " + chunkID,
		Status:      model.ChunkStatusAwaitingEmbedding,
	}
	if err := store.DB().Create(&chunk).Error; err != nil {
		t.Fatalf("create chunk: %v", err)
	}

	raw, err := json.Marshal(vec)
	if err != nil {
		t.Fatalf("marshal vector: %v", err)
	}
	if err := store.SetChunkEmbedding(ctx, chunkID, string(raw)); err != nil {
		t.Fatalf("set embedding: %v", err)
	}
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "100", "100-0", 2022, []float64{0, 1})
	seedChunk(t, store, "100", "100-1", 2022, []float64{1, 0})
	seedChunk(t, store, "100", "100-2", 2022, []float64{1, 1})

	s := NewSearcher(store, fakeEmbedder{vec: []float64{1, 0}}, nil)
	results, err := s.Search(context.Background(), "query", 2, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ChunkID != "100-1" || results[1].ChunkID != "100-2" {
		t.Errorf("wrong order: %s, %s", results[0].ChunkID, results[1].ChunkID)
	}
	if results[0].SimilarityScore < results[1].SimilarityScore {
		t.Errorf("scores not descending: %v < %v", results[0].SimilarityScore, results[1].SimilarityScore)
	}
}

func TestSearch_YearFilter(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "200", "200-0", 2021, []float64{1, 0})
	seedChunk(t, store, "300", "300-0", 2023, []float64{1, 0})

	s := NewSearcher(store, fakeEmbedder{vec: []float64{1, 0}}, nil)
	year := 2023
	results, err := s.Search(context.Background(), "query", 10, &year)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ReportID != "300" {
		t.Fatalf("year filter not applied: %+v", results)
	}
}

func TestSearch_EmbedderDown(t *testing.T) {
	store := newTestStore(t)
	wrapped := fmt.Errorf("%w: connection refused", embedding.ErrUnavailable)

	s := NewSearcher(store, fakeEmbedder{err: wrapped}, nil)
	_, err := s.Search(context.Background(), "query", 5, nil)
	if err == nil {
		t.Fatal("expected error when embedder is down")
	}
	if !errors.Is(err, ErrEmbeddingUnavailable) {
		t.Errorf("error not recognizable as embedding outage: %v", err)
	}
}

func TestSearch_SkipsMalformedVectors(t *testing.T) {
	store := newTestStore(t)
	seedChunk(t, store, "400", "400-0", 2022, []float64{1, 0})

	// Overwrite with undecodable content; the chunk stays ready.
	ctx := context.Background()
	if err := store.SetChunkEmbedding(ctx, "400-0", "not-a-vector"); err != nil {
		t.Fatalf("set embedding: %v", err)
	}
	seedChunk(t, store, "400", "400-1", 2022, []float64{1, 0})

	s := NewSearcher(store, fakeEmbedder{vec: []float64{1, 0}}, nil)
	results, err := s.Search(ctx, "query", 10, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].ChunkID != "400-1" {
		t.Fatalf("malformed vector should be skipped, got %+v", results)
	}
}

func TestSearch_DefaultTopK(t *testing.T) {
	store := newTestStore(t)
	for i := 0; i < 8; i++ {
		seedChunk(t, store, "500", fmt.Sprintf("500-%d", i), 2022, []float64{1, float64(i)})
	}

	s := NewSearcher(store, fakeEmbedder{vec: []float64{1, 0}}, nil)
	results, err := s.Search(context.Background(), "query", 0, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected default of 5 results, got %d", len(results))
	}
}

func TestSearch_TextPreviewBounded(t *testing.T) {
	store := newTestStore(t)
	long := make([]byte, 0, 600)
	for i := 0; i < 600; i++ {
		long = append(long, 'x')
	}
	ctx := context.Background()

	report := &model.Report{ReportID: "600", Year: 2022, Title: "600"}
	if err := store.CreateReportWithChunks(ctx, report, nil); err != nil {
		t.Fatalf("create report: %v", err)
	}
	chunk := model.Chunk{
		ChunkID:     "600-0",
		ReportID:    "600",
		MainHeading: "Long",
		PageRange:   "1-1",
		TextContent: string(long),
		Status:      model.ChunkStatusAwaitingEmbedding,
	}
	if err := store.DB().Create(&chunk).Error; err != nil {
		t.Fatalf("create chunk: %v", err)
	}
	if err := store.SetChunkEmbedding(ctx, "600-0", "[1,0]"); err != nil {
		t.Fatalf("set embedding: %v", err)
	}

	s := NewSearcher(store, fakeEmbedder{vec: []float64{1, 0}}, nil)
	results, err := s.Search(ctx, "query", 1, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := len([]rune(results[0].Text)); got != 200 {
		t.Errorf("preview length = %d, want 200", got)
	}
}
