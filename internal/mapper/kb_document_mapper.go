package mapper

import (
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type KbDocumentMapper struct{}

func NewKbDocumentMapper() *KbDocumentMapper {
	return &KbDocumentMapper{}
}

func (m *KbDocumentMapper) ToEntity(e *model.KbDocument) *entity.KbDocument {
	if e == nil {
		return nil
	}

	return &entity.KbDocument{
		Id:        e.Id,
		Text:      e.Text,
		SourceURL: e.SourceURL,
		Embedding: e.Embedding.Slice(),
		CreatedAt: e.CreatedAt,
	}
}

func (m *KbDocumentMapper) ToModel(e *entity.KbDocument) *model.KbDocument {
	if e == nil {
		return nil
	}

	return &model.KbDocument{
		Id:        e.Id,
		Text:      e.Text,
		SourceURL: e.SourceURL,
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
	}
}

func (m *KbDocumentMapper) ToEntities(documents []*model.KbDocument) []*entity.KbDocument {
	entities := make([]*entity.KbDocument, len(documents))
	for i, e := range documents {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *KbDocumentMapper) ToModels(documents []*entity.KbDocument) []*model.KbDocument {
	models := make([]*model.KbDocument, len(documents))
	for i, e := range documents {
		models[i] = m.ToModel(e)
	}
	return models
}
