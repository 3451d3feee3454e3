package service

import (
	"context"
	"encoding/json"
	"log"

	"dealagent-be/internal/dto"
	"dealagent-be/internal/repository/specification"
	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage embeds one stored chunk. Acks poison messages (bad payload,
// chunk deleted), Nacks retriable failures.
func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChunkMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chunk, err := uow.DocumentChunkRepository().FindOne(ctx, specification.ByID{ID: payload.ChunkId})
	if err != nil {
		log.Printf("[ERROR] Failed to get chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}
	if chunk == nil {
		log.Printf("[WARN] Chunk not found, skipping: %s", payload.ChunkId)
		msg.Ack()
		return
	}
	if chunk.Embedded {
		msg.Ack()
		return
	}

	res, err := cs.embeddingProvider.Generate(chunk.Content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		log.Printf("[ERROR] Failed to generate embedding for chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}

	if err := uow.DocumentChunkRepository().SetEmbedding(ctx, chunk.Id, res.Embedding.Values); err != nil {
		log.Printf("[ERROR] Failed to store embedding for chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Embedded chunk %d of document %s", chunk.ChunkIndex, chunk.DocumentId)
	msg.Ack()
}
