// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/utils"
	"school-concierge-be/pkg/vectorindex"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	index             *vectorindex.Index
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	index *vectorindex.Index,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		index:             index,
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

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedKbDocumentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if payload.Text == "" {
		log.Printf("[WARN] Empty knowledge-base passage, skipping")
		msg.Ack()
		return
	}

	log.Printf("[INFO] Embedding knowledge-base passage (length: %d)", len(payload.Text))

	// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars
	chunks := utils.SplitText(payload.Text, 1500, 200)
	log.Printf("[INFO] Passage split into %d chunks", len(chunks))

	var sourceURL *string
	if payload.SourceURL != "" {
		sourceURL = &payload.SourceURL
	}

	var newDocuments []*entity.KbDocument

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to generate embedding for chunk %d: %v", i, err)
			msg.Nack()
			return
		}

		newDocuments = append(newDocuments, &entity.KbDocument{
			Id:        uuid.New(),
			Text:      chunk,
			SourceURL: sourceURL,
			Embedding: res.Embedding.Values,
			CreatedAt: time.Now(),
		})
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.KbDocumentRepository().CreateBulk(ctx, newDocuments); err != nil {
		log.Printf("[ERROR] Failed to create bulk documents: %v", err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	// Fold the new chunks into the serving index without a full reload.
	indexed := make([]vectorindex.Document, len(newDocuments))
	for i, doc := range newDocuments {
		url := ""
		if doc.SourceURL != nil {
			url = *doc.SourceURL
		}
		indexed[i] = vectorindex.Document{
			ID:        doc.Id.String(),
			Text:      doc.Text,
			SourceURL: url,
			Embedding: doc.Embedding,
		}
	}
	cs.index.Add(indexed...)

	log.Printf("[SUCCESS] Passage processed: %d chunks stored and indexed", len(newDocuments))
	msg.Ack()
}
