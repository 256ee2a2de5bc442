package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KbDocument struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text      string    `gorm:"type:text;not null"`
	SourceURL *string   `gorm:"type:text"`
	Embedding pgvector.Vector `gorm:"type:vector(1536)"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KbDocument) TableName() string {
	return "kb_documents"
}
