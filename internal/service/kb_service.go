// FILE: internal/service/kb_service.go
package service

import (
	"context"
	"encoding/json"
	"strings"

	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/pkg/logger"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/vectorindex"
)

// IKbService manages the retrieval corpus: queueing new passages, loading
// the serving index from Postgres, and hot-reloading the curated answer
// table.
type IKbService interface {
	Ingest(ctx context.Context, req *dto.IngestKbDocumentRequest) (*dto.IngestKbDocumentResponse, error)
	LoadIndex(ctx context.Context) error
	ReloadAnswers(ctx context.Context) (*dto.ReloadAnswersResponse, error)
	Stats(ctx context.Context) (*dto.KbStatsResponse, error)
}

type kbService struct {
	uowFactory unitofwork.RepositoryFactory
	publisher  IPublisherService
	index      *vectorindex.Index
	table      *answers.Table
	logger     logger.ILogger
}

func NewKbService(
	uowFactory unitofwork.RepositoryFactory,
	publisher IPublisherService,
	index *vectorindex.Index,
	table *answers.Table,
	log logger.ILogger,
) IKbService {
	return &kbService{
		uowFactory: uowFactory,
		publisher:  publisher,
		index:      index,
		table:      table,
		logger:     log,
	}
}

// Ingest queues a passage for the embedding worker. The write to Postgres
// and the index happens asynchronously.
func (s *kbService) Ingest(ctx context.Context, req *dto.IngestKbDocumentRequest) (*dto.IngestKbDocumentResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, entity.NewValidationError("text must not be empty")
	}

	payload, err := json.Marshal(dto.PublishEmbedKbDocumentMessage{
		Text:      req.Text,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, payload); err != nil {
		return nil, err
	}

	return &dto.IngestKbDocumentResponse{Queued: 1}, nil
}

// LoadIndex pulls every stored passage into the in-memory index. Called at
// startup; the consumer appends incrementally after that.
func (s *kbService) LoadIndex(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.KbDocumentRepository().FindAll(ctx)
	if err != nil {
		return err
	}

	docs := make([]vectorindex.Document, len(documents))
	for i, doc := range documents {
		url := ""
		if doc.SourceURL != nil {
			url = *doc.SourceURL
		}
		docs[i] = vectorindex.Document{
			ID:        doc.Id.String(),
			Text:      doc.Text,
			SourceURL: url,
			Embedding: doc.Embedding,
		}
	}
	s.index.Replace(docs)

	s.logger.Info("Kb", "Vector index loaded", map[string]interface{}{
		"documents": len(docs),
	})
	return nil
}

func (s *kbService) ReloadAnswers(ctx context.Context) (*dto.ReloadAnswersResponse, error) {
	if err := s.table.Reload(); err != nil {
		return nil, err
	}
	s.logger.Info("Kb", "Answer table reloaded", map[string]interface{}{
		"entries": s.table.Size(),
	})
	return &dto.ReloadAnswersResponse{Entries: s.table.Size()}, nil
}

func (s *kbService) Stats(ctx context.Context) (*dto.KbStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.KbDocumentRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.KbStatsResponse{
		Documents:   count,
		IndexedDocs: s.index.Len(),
		AnswerTable: s.table.Size(),
	}, nil
}
