package entity

import (
	"time"

	"github.com/google/uuid"
)

// KbDocument is one knowledge-base passage with its stored embedding.
type KbDocument struct {
	Id        uuid.UUID
	Text      string
	SourceURL *string
	Embedding []float32
	CreatedAt time.Time
}
