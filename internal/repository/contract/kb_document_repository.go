package contract

import (
	"context"

	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/repository/specification"
)

type KbDocumentRepository interface {
	Create(ctx context.Context, document *entity.KbDocument) error
	CreateBulk(ctx context.Context, documents []*entity.KbDocument) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAll(ctx context.Context) error
}
