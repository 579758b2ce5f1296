package database

import (
	"context"
	"errors"
	"time"

	"docgen/internal/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps a gorm handle with the queries the ingestion and retrieval
// services need. Handles are passed in explicitly; there is no package
// level connection.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *gorm.DB { return s.db }

// AutoMigrate creates the schema for all docgen tables.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&model.Report{},
		&model.Chunk{},
		&model.HeadingFrequency{},
		&model.GeneratedReport{},
	)
}

// ReportExists reports whether a report row with the given identifier is
// already persisted.
func (s *Store) ReportExists(ctx context.Context, reportID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Report{}).
		Where("report_id = ?", reportID).
		Count(&count).Error
	return count > 0, err
}

// CreateReportWithChunks persists the report row, all of its chunk rows and
// the heading-frequency upserts as one transaction. A failure anywhere
// rolls back everything; partial chunk sets are never visible.
func (s *Store) CreateReportWithChunks(ctx context.Context, report *model.Report, chunks []model.Chunk) error {
	return WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if len(chunks) > 0 {
			if err := tx.Create(&chunks).Error; err != nil {
				return err
			}
		}
		now := time.Now()
		for _, ch := range chunks {
			freq := model.HeadingFrequency{
				Heading:      ch.MainHeading,
				HeadingCount: 1,
				LastUpdated:  now,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "heading"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"heading_count": gorm.Expr("heading_count + 1"),
					"last_updated":  now,
				}),
			}).Create(&freq).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ChunksByStatus returns all chunks in the given embedding status.
func (s *Store) ChunksByStatus(ctx context.Context, status string) ([]model.Chunk, error) {
	var chunks []model.Chunk
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("chunk_id").
		Find(&chunks).Error
	return chunks, err
}

// SetChunkEmbedding stores the serialized vector and flips the chunk to
// ready. Safe to call again for an already-ready chunk; the vector is
// simply overwritten.
func (s *Store) SetChunkEmbedding(ctx context.Context, chunkID string, embedding string) error {
	return s.db.WithContext(ctx).Model(&model.Chunk{}).
		Where("chunk_id = ?", chunkID).
		Updates(map[string]interface{}{
			"embedding": embedding,
			"status":    model.ChunkStatusReady,
		}).Error
}

// ScanReadyChunks returns every ready chunk, optionally restricted to
// chunks whose owning report matches the year filter.
func (s *Store) ScanReadyChunks(ctx context.Context, yearFilter *int) ([]model.Chunk, error) {
	var chunks []model.Chunk
	q := s.db.WithContext(ctx).Model(&model.Chunk{}).
		Where("chunks.status = ?", model.ChunkStatusReady)
	if yearFilter != nil {
		q = q.Joins("JOIN reports ON reports.report_id = chunks.report_id").
			Where("reports.year = ?", *yearFilter)
	}
	err := q.Find(&chunks).Error
	return chunks, err
}

// CountReports returns the number of ingested reports.
func (s *Store) CountReports(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Report{}).Count(&count).Error
	return count, err
}

// CountChunksByStatus returns the number of chunks in the given status.
func (s *Store) CountChunksByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Chunk{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// CountDistinctYears returns how many distinct publication years are
// covered by the ingested reports.
func (s *Store) CountDistinctYears(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Report{}).
		Distinct("year").
		Count(&count).Error
	return count, err
}

// GetReport loads a report row; returns gorm.ErrRecordNotFound wrapped as
// a nil report when absent.
func (s *Store) GetReport(ctx context.Context, reportID string) (*model.Report, error) {
	var report model.Report
	err := s.db.WithContext(ctx).First(&report, "report_id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
