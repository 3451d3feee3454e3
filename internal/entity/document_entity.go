package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusAnalyzed DocumentStatus = "analyzed"
)

// Document is one submitted RFP/proposal, stored as extracted raw text.
type Document struct {
	Id        uuid.UUID
	Title     string
	RawText   string
	Status    DocumentStatus
	UserId    uuid.UUID
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// DocumentChunk is one overlapping slice of a document's raw text together
// with its embedding vector. Chunks are written without a vector at ingestion
// and embedded asynchronously.
type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	Embedded       bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
