package unitofwork

import (
	"context"

	"school-concierge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	KbDocumentRepository() contract.KbDocumentRepository
}
