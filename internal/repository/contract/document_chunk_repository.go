package contract

import (
	"context"

	"dealagent-be/internal/entity"
	"dealagent-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentChunk wraps a chunk with its cosine similarity to a query
// vector (1.0 = identical).
type ScoredDocumentChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	Create(ctx context.Context, chunk *entity.DocumentChunk) error
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	Update(ctx context.Context, chunk *entity.DocumentChunk) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SetEmbedding writes the vector produced by the async embedding worker.
	SetEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error
	// SearchSimilarWithScore returns the chunks of one document ranked by
	// cosine similarity, filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, documentId uuid.UUID, threshold float64) ([]*ScoredDocumentChunk, error)
}
