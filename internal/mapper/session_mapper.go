package mapper

import (
	"encoding/json"
	"time"

	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(e *model.Session) *entity.Session {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var meta entity.SessionMeta
	if len(e.Meta) > 0 {
		// Malformed audit blobs are not fatal; the row is still usable.
		_ = json.Unmarshal(e.Meta, &meta)
	}

	return &entity.Session{
		SessionID:     e.SessionID,
		Question:      e.Question,
		BotResponse:   e.BotResponse,
		HumanResponse: e.HumanResponse,
		Status:        e.Status,
		Meta:          meta,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *SessionMapper) ToModel(e *entity.Session) *model.Session {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	meta, _ := json.Marshal(e.Meta)

	return &model.Session{
		SessionID:     e.SessionID,
		Question:      e.Question,
		BotResponse:   e.BotResponse,
		HumanResponse: e.HumanResponse,
		Status:        e.Status,
		Meta:          datatypes.JSON(meta),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, e := range sessions {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

func (m *SessionMapper) ToModels(sessions []*entity.Session) []*model.Session {
	models := make([]*model.Session, len(sessions))
	for i, e := range sessions {
		models[i] = m.ToModel(e)
	}
	return models
}
