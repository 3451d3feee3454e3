package search

import (
	"context"
	"fmt"
	"log"

	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/pkg/embedding"
	"dealagent-be/pkg/store"

	"github.com/google/uuid"
)

// Orchestrator embeds a query and runs vector search over one document's
// chunks.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	Threshold float64
	TopK      int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		Threshold: 0.3,
		TopK:      4,
	}
}

// Execute runs vector search and returns the matching chunk contents with
// their similarity scores.
func (o *Orchestrator) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	documentId uuid.UUID,
	query string,
	config Config,
) ([]store.Document, error) {

	embeddingRes, err := o.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}

	scored, err := uow.DocumentChunkRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		config.TopK,
		documentId,
		config.Threshold,
	)
	if err != nil {
		o.logger.Printf("[ERROR] Vector search failed: %v", err)
		return nil, err
	}

	o.logger.Printf("[DEBUG] Vector search returned %d chunks for document %s", len(scored), documentId)

	docs := make([]store.Document, 0, len(scored))
	for _, res := range scored {
		docs = append(docs, store.Document{
			ID:      res.Chunk.Id.String(),
			Content: res.Chunk.Content,
			Score:   float32(res.Similarity),
		})
	}

	return docs, nil
}

// BoundRetriever fixes an Orchestrator to one unit of work and one document,
// satisfying the pipeline's retriever contract for a single request.
type BoundRetriever struct {
	orchestrator *Orchestrator
	uow          unitofwork.UnitOfWork
	documentId   uuid.UUID
	threshold    float64
}

// Bind returns a per-request retriever over the given document.
func (o *Orchestrator) Bind(uow unitofwork.UnitOfWork, documentId uuid.UUID) *BoundRetriever {
	return &BoundRetriever{
		orchestrator: o,
		uow:          uow,
		documentId:   documentId,
		threshold:    DefaultConfig().Threshold,
	}
}

func (r *BoundRetriever) Search(ctx context.Context, query string, topK int) ([]store.Document, error) {
	return r.orchestrator.Execute(ctx, r.uow, r.documentId, query, Config{
		Threshold: r.threshold,
		TopK:      topK,
	})
}
