// FILE: internal/service/assistant_service.go
package service

import (
	"context"
	"strings"

	"school-concierge-be/internal/constant"
	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/pkg/logger"
	"school-concierge-be/internal/repository/memory"
	"school-concierge-be/internal/repository/specification"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/pkg/formatter"
	"school-concierge-be/pkg/policy"
	"school-concierge-be/pkg/resolve"

	"github.com/google/uuid"
)

type IAssistantService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	Status(ctx context.Context, sessionID string) (*dto.AskResponse, error)
}

// AnswerPusher delivers an answer payload to every open socket of a session.
// Satisfied by the websocket hub; delivery is best effort.
type AnswerPusher interface {
	Send(sessionID string, messageType string, payload interface{})
}

type assistantService struct {
	uowFactory unitofwork.RepositoryFactory
	resolver   *resolve.Resolver
	policy     *policy.Policy
	formatter  *formatter.Formatter
	cache      *memory.ResolutionCache
	notifier   INotifierService
	pusher     AnswerPusher
	logger     logger.ILogger
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *resolve.Resolver,
	escalationPolicy *policy.Policy,
	responseFormatter *formatter.Formatter,
	cache *memory.ResolutionCache,
	notifier INotifierService,
	pusher AnswerPusher,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		uowFactory: uowFactory,
		resolver:   resolver,
		policy:     escalationPolicy,
		formatter:  responseFormatter,
		cache:      cache,
		notifier:   notifier,
		pusher:     pusher,
		logger:     log,
	}
}

// Ask answers a visitor question, or hands it to a human when the escalation
// policy fires. Writes to the same session are serialized with a row lock so
// racing turns cannot interleave.
func (s *assistantService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, entity.NewValidationError("question must not be empty")
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// First pass: if the session is already with a human, answer from the
	// stored state without touching the resolution pipeline.
	handled, err := s.checkHandedOff(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if handled != nil {
		return handled, nil
	}

	// Resolve outside any transaction: tiers one to three are local, the
	// retrieval tier calls out to the embedding and generation providers.
	result, err := s.resolveQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	decision := s.policy.Evaluate(question, result.Confidence)

	if decision.Escalate {
		return s.escalate(ctx, sessionID, question, result, decision.Reasons)
	}

	// Every automated answer is formatted with the greeting; only human
	// replies keep their author's own opening.
	answer := s.formatter.Format(result.Answer, true)

	session := &entity.Session{
		SessionID:   sessionID,
		Question:    question,
		BotResponse: &answer,
		Status:      entity.SessionStatusBot,
		Meta: entity.SessionMeta{
			Source:     result.Source,
			Confidence: result.Confidence,
			URL:        result.Link,
			LinkLabel:  result.Label,
		},
	}
	if err := s.storeTurn(ctx, session); err != nil {
		return nil, err
	}

	res := &dto.AskResponse{
		SessionID: sessionID,
		Answer:    answer,
		Status:    entity.SessionStatusBot,
		URL:       result.Link,
		LinkLabel: result.Label,
		Source:    entity.AnswerSourceBot,
	}
	s.pusher.Send(sessionID, "answer", res)

	return res, nil
}

// checkHandedOff looks up the session under a row lock. When the session is
// pending or with a human the stored reply wins over a fresh resolution.
func (s *assistantService) checkHandedOff(ctx context.Context, sessionID string) (*dto.AskResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	session, err := uow.SessionRepository().FindOneForUpdate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, uow.Commit()
	}

	switch session.Status {
	case entity.SessionStatusHuman:
		if session.HumanResponse != nil {
			if err := uow.Commit(); err != nil {
				return nil, err
			}
			// The moderator's words are returned verbatim, no reformatting.
			return &dto.AskResponse{
				SessionID: sessionID,
				Answer:    *session.HumanResponse,
				Status:    entity.SessionStatusHuman,
				Source:    entity.AnswerSourceHuman,
			}, nil
		}
	case entity.SessionStatusPending:
		if err := uow.Commit(); err != nil {
			return nil, err
		}
		return &dto.AskResponse{
			SessionID: sessionID,
			Answer:    constant.AwaitingReviewMessage,
			Status:    entity.SessionStatusPending,
			Source:    entity.AnswerSourceSystem,
		}, nil
	}

	return nil, uow.Commit()
}

func (s *assistantService) resolveQuestion(ctx context.Context, question string) (*resolve.Result, error) {
	if cached, found := s.cache.Get(question); found {
		return cached, nil
	}

	result, err := s.resolver.Resolve(ctx, question)
	if err != nil {
		return nil, err
	}

	// Only the retrieval tier is worth memoizing; the curated tiers are
	// in-memory lookups already.
	if result.Source == resolve.SourceRetrieval {
		s.cache.Save(question, result)
	}
	return result, nil
}

func (s *assistantService) escalate(ctx context.Context, sessionID, question string, result *resolve.Result, reasons []string) (*dto.AskResponse, error) {
	// The draft stays in the audit trail but is never shown to the visitor.
	draft := result.Answer
	session := &entity.Session{
		SessionID:   sessionID,
		Question:    question,
		BotResponse: &draft,
		Status:      entity.SessionStatusPending,
		Meta: entity.SessionMeta{
			Source:     result.Source,
			Confidence: result.Confidence,
			URL:        result.Link,
			LinkLabel:  result.Label,
			Reasons:    reasons,
		},
	}
	if err := s.storeTurn(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Assistant", "Session escalated to human review", map[string]interface{}{
		"session_id": sessionID,
		"reasons":    reasons,
	})

	// Alert delivery must not block or fail the visitor's request.
	if err := s.notifier.NotifyEscalation(ctx, sessionID, question, reasons); err != nil {
		s.logger.Error("Assistant", "Escalation alert failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	res := &dto.AskResponse{
		SessionID: sessionID,
		Answer:    constant.AwaitingReviewMessage,
		Status:    entity.SessionStatusPending,
		Source:    entity.AnswerSourceSystem,
	}
	s.pusher.Send(sessionID, "answer", res)

	return res, nil
}

// storeTurn re-locks the row and upserts the turn. If a moderator grabbed
// the session while we were resolving, their state wins and the write is
// dropped.
func (s *assistantService) storeTurn(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	current, err := uow.SessionRepository().FindOneForUpdate(ctx, session.SessionID)
	if err != nil {
		return err
	}
	if current != nil && current.Status == entity.SessionStatusHuman {
		s.logger.Warn("Assistant", "Dropping bot turn, session was taken over mid-flight", map[string]interface{}{
			"session_id": session.SessionID,
		})
		return uow.Commit()
	}
	if current != nil {
		session.CreatedAt = current.CreatedAt
	}

	if err := uow.SessionRepository().Upsert(ctx, session); err != nil {
		return err
	}
	return uow.Commit()
}

// Status reflects the current session state in the Ask response shape,
// without submitting a new question.
func (s *assistantService) Status(ctx context.Context, sessionID string) (*dto.AskResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, entity.NewValidationError("session_id must not be empty")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.SessionRepository().FindOne(ctx, specification.BySessionID{SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, entity.ErrUnknownSession
	}

	res := &dto.AskResponse{
		SessionID: session.SessionID,
		Status:    session.Status,
	}

	// The read contract follows the state machine: a pending session gets
	// the awaiting-review text and never the suppressed draft, a handed-off
	// session gets only the human reply.
	switch session.Status {
	case entity.SessionStatusHuman:
		if session.HumanResponse != nil {
			res.Answer = *session.HumanResponse
		}
		res.Source = entity.AnswerSourceHuman
	case entity.SessionStatusPending:
		res.Answer = constant.AwaitingReviewMessage
		res.Source = entity.AnswerSourceSystem
	default:
		if session.BotResponse != nil {
			res.Answer = *session.BotResponse
		}
		res.URL = session.Meta.URL
		res.LinkLabel = session.Meta.LinkLabel
		res.Source = entity.AnswerSourceBot
	}

	return res, nil
}
