package contract

import (
	"context"

	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/repository/specification"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	Update(ctx context.Context, session *entity.Session) error
	Upsert(ctx context.Context, session *entity.Session) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	// FindOneForUpdate locks the row for the rest of the transaction so
	// concurrent writes to the same session are serialized.
	FindOneForUpdate(ctx context.Context, sessionID string) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
