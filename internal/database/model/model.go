package model

import "time"

// Chunk embedding status values. A chunk is created awaiting_embedding and
// moves to ready exactly once, when its vector is stored.
const (
	ChunkStatusAwaitingEmbedding = "awaiting_embedding"
	ChunkStatusReady             = "ready"
)

// Report is one ingested PDF. Rows are created once at ingestion time and
// never mutated afterwards.
type Report struct {
	ReportID   string    `gorm:"column:report_id;primaryKey" json:"report_id"`
	Year       int       `gorm:"column:year;index" json:"year"`
	Title      string    `gorm:"column:title" json:"title"`
	FilePath   string    `gorm:"column:file_path" json:"file_path"`
	NumPages   int       `gorm:"column:num_pages" json:"num_pages"`
	Metadata   string    `gorm:"column:metadata;type:text" json:"metadata"`
	UploadDate time.Time `gorm:"column:upload_date;autoCreateTime" json:"upload_date"`
}

func (Report) TableName() string { return "reports" }

// Chunk is a contiguous, heading-labeled page range of a report.
// ChunkID is "<report_id>-<ordinal>" with the ordinal assigned in
// chunk-creation order starting at 0.
type Chunk struct {
	ChunkID     string    `gorm:"column:chunk_id;primaryKey" json:"chunk_id"`
	ReportID    string    `gorm:"column:report_id;index" json:"report_id"`
	MainHeading string    `gorm:"column:main_heading;index" json:"main_heading"`
	PageRange   string    `gorm:"column:page_range" json:"page_range"`
	TextContent string    `gorm:"column:text_content;type:longtext" json:"text_content"`
	Embedding   *string   `gorm:"column:embedding;type:longtext" json:"-"`
	Status      string    `gorm:"column:status;index" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Chunk) TableName() string { return "chunks" }

// HeadingFrequency counts persisted chunks per exact heading text, across
// all reports. Upserted on every chunk insert.
type HeadingFrequency struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Heading      string    `gorm:"column:heading;uniqueIndex;size:512" json:"heading"`
	HeadingCount int64     `gorm:"column:heading_count" json:"heading_count"`
	LastUpdated  time.Time `gorm:"column:last_updated" json:"last_updated"`
}

func (HeadingFrequency) TableName() string { return "search_metadata" }

// GeneratedReport is a document synthesized from search results.
type GeneratedReport struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	Title      string    `gorm:"column:title" json:"title"`
	Body       string    `gorm:"column:body;type:longtext" json:"body"`
	FilePath   string    `gorm:"column:file_path" json:"file_path"`
	NumSources int       `gorm:"column:num_sources" json:"num_sources"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (GeneratedReport) TableName() string { return "generated_reports" }
