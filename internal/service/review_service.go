// FILE: internal/service/review_service.go
package service

import (
	"context"
	"strings"

	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/pkg/logger"
	"school-concierge-be/internal/repository/specification"
	"school-concierge-be/internal/repository/unitofwork"
)

// IReviewService is the moderator console: list waiting sessions, answer
// them, or hand a session back to the assistant.
type IReviewService interface {
	Pending(ctx context.Context) ([]*dto.PendingSessionResponse, error)
	Reply(ctx context.Context, req *dto.ReviewReplyRequest) (*dto.ReviewReplyResponse, error)
	Release(ctx context.Context, req *dto.ReviewReleaseRequest) (*dto.ReviewReleaseResponse, error)
}

type reviewService struct {
	uowFactory unitofwork.RepositoryFactory
	pusher     AnswerPusher
	logger     logger.ILogger
}

func NewReviewService(
	uowFactory unitofwork.RepositoryFactory,
	pusher AnswerPusher,
	log logger.ILogger,
) IReviewService {
	return &reviewService{
		uowFactory: uowFactory,
		pusher:     pusher,
		logger:     log,
	}
}

func (s *reviewService) Pending(ctx context.Context) ([]*dto.PendingSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.ByStatus{Status: entity.SessionStatusPending},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.PendingSessionResponse, len(sessions))
	for i, session := range sessions {
		res[i] = &dto.PendingSessionResponse{
			SessionID:  session.SessionID,
			Question:   session.Question,
			Reasons:    session.Meta.Reasons,
			Draft:      session.BotResponse,
			Confidence: session.Meta.Confidence,
			CreatedAt:  session.CreatedAt,
		}
	}
	return res, nil
}

// Reply stores the moderator's answer and pushes it to the visitor's open
// sockets. The reply text is delivered verbatim.
func (s *reviewService) Reply(ctx context.Context, req *dto.ReviewReplyRequest) (*dto.ReviewReplyResponse, error) {
	answer := strings.TrimSpace(req.Answer)
	if answer == "" {
		return nil, entity.NewValidationError("answer must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().FindOneForUpdate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, entity.ErrUnknownSession
	}

	session.HumanResponse = &answer
	session.Status = entity.SessionStatusHuman
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Review", "Moderator replied", map[string]interface{}{
		"session_id": req.SessionID,
	})

	s.pusher.Send(req.SessionID, "answer", &dto.AskResponse{
		SessionID: req.SessionID,
		Answer:    answer,
		Status:    entity.SessionStatusHuman,
		Source:    entity.AnswerSourceHuman,
	})

	return &dto.ReviewReplyResponse{
		SessionID: req.SessionID,
		Status:    entity.SessionStatusHuman,
	}, nil
}

// Release hands the session back to the assistant for the next turn. The
// human reply, if any, is kept in the row for the audit trail.
func (s *reviewService) Release(ctx context.Context, req *dto.ReviewReleaseRequest) (*dto.ReviewReleaseResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().FindOneForUpdate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, entity.ErrUnknownSession
	}

	session.Status = entity.SessionStatusBot
	if err := uow.SessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Review", "Session released back to assistant", map[string]interface{}{
		"session_id": req.SessionID,
	})

	return &dto.ReviewReleaseResponse{
		SessionID: req.SessionID,
		Status:    entity.SessionStatusBot,
	}, nil
}
