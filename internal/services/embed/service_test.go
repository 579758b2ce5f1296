package embed

import (
	"context"
	"errors"
	"testing"

	"docgen/internal/database"
	"docgen/internal/database/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeEmbedder struct {
	vec     []float64
	failFor map[string]bool
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if f.failFor[text] {
		return nil, errors.New("embedding backend unreachable")
	}
	return f.vec, nil
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

func seedAwaiting(t *testing.T, store *database.Store, reportID string, texts ...string) {
	t.Helper()
	ctx := context.Background()

	chunks := make([]model.Chunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, model.Chunk{
			ChunkID:     reportID + "-" + string(rune('0'+i)),
			ReportID:    reportID,
			MainHeading: "H",
			PageRange:   "1-1",
			TextContent: text,
			Status:      model.ChunkStatusAwaitingEmbedding,
		})
	}
	report := &model.Report{ReportID: reportID, Year: 2023}
	if err := store.CreateReportWithChunks(ctx, report, chunks); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestEmbedAll(t *testing.T) {
	store := newTestStore(t)
	seedAwaiting(t, store, "700", "alpha", "beta", "gamma")

	svc := NewService(store, fakeEmbedder{vec: []float64{0.1, 0.2}})
	summary, err := svc.EmbedAll(context.Background())
	if err != nil {
		t.Fatalf("embed all: %v", err)
	}
	if summary.Total != 3 || summary.Processed != 3 || summary.Errors != 0 {
		t.Fatalf("summary %+v", summary)
	}

	ready, err := store.CountChunksByStatus(context.Background(), model.ChunkStatusReady)
	if err != nil || ready != 3 {
		t.Errorf("ready = %d, err %v", ready, err)
	}
}

// A failing chunk is counted and left awaiting; the rest of the run
// continues. A second run picks up only the leftovers.
func TestEmbedAll_PartialFailureAndRetry(t *testing.T) {
	store := newTestStore(t)
	seedAwaiting(t, store, "800", "alpha", "beta", "gamma")

	svc := NewService(store, fakeEmbedder{vec: []float64{1}, failFor: map[string]bool{"beta": true}})
	summary, err := svc.EmbedAll(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if summary.Processed != 2 || summary.Errors != 1 {
		t.Fatalf("first summary %+v", summary)
	}

	awaiting, _ := store.CountChunksByStatus(context.Background(), model.ChunkStatusAwaitingEmbedding)
	if awaiting != 1 {
		t.Fatalf("awaiting after failure = %d", awaiting)
	}

	svc = NewService(store, fakeEmbedder{vec: []float64{1}})
	summary, err = svc.EmbedAll(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if summary.Total != 1 || summary.Processed != 1 {
		t.Fatalf("retry summary %+v", summary)
	}
	ready, _ := store.CountChunksByStatus(context.Background(), model.ChunkStatusReady)
	if ready != 3 {
		t.Errorf("ready = %d, want 3", ready)
	}
}

func TestEmbedAll_NothingToDo(t *testing.T) {
	store := newTestStore(t)

	svc := NewService(store, fakeEmbedder{vec: []float64{1}})
	summary, err := svc.EmbedAll(context.Background())
	if err != nil {
		t.Fatalf("embed all: %v", err)
	}
	if summary.Total != 0 || summary.Processed != 0 || summary.Errors != 0 {
		t.Errorf("summary %+v", summary)
	}
}
