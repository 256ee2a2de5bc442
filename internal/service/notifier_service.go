// FILE: internal/service/notifier_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/pkg/logger"
	"school-concierge-be/internal/pkg/mailer"
	"school-concierge-be/pkg/events"
	"school-concierge-be/pkg/nats"
)

// INotifierService alerts staff that a session is waiting for review.
// Failures are wrapped in ErrNotifierFailure; callers log and move on, the
// visitor never sees them.
type INotifierService interface {
	NotifyEscalation(ctx context.Context, sessionID, question string, reasons []string) error
}

type notifierService struct {
	publisher *nats.Publisher
	mailer    mailer.IEmailService
	recipient string
	logger    logger.ILogger
}

func NewNotifierService(
	publisher *nats.Publisher,
	emailService mailer.IEmailService,
	recipient string,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		publisher: publisher,
		mailer:    emailService,
		recipient: recipient,
		logger:    log,
	}
}

func (s *notifierService) NotifyEscalation(ctx context.Context, sessionID, question string, reasons []string) error {
	// Prefer the event bus so the alert worker owns delivery and retries.
	if s.publisher != nil {
		event := events.NewSessionEscalated(sessionID, question, reasons)
		err := s.publisher.Publish(ctx, event)
		if err == nil {
			return nil
		}
		s.logger.Warn("Notifier", "Event publish failed, falling back to direct email", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	if s.mailer == nil || s.recipient == "" {
		return fmt.Errorf("%w: no alert channel configured", entity.ErrNotifierFailure)
	}

	if err := s.mailer.SendEscalationAlert(s.recipient, sessionID, question, reasons); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrNotifierFailure, err)
	}
	return nil
}

// EscalationWorker consumes escalation events off the bus and emails the
// staff inbox. Runs once per deployment via the durable consumer name.
type EscalationWorker struct {
	subscriber *nats.Subscriber
	mailer     mailer.IEmailService
	recipient  string
	logger     logger.ILogger
}

func NewEscalationWorker(
	subscriber *nats.Subscriber,
	emailService mailer.IEmailService,
	recipient string,
	log logger.ILogger,
) *EscalationWorker {
	return &EscalationWorker{
		subscriber: subscriber,
		mailer:     emailService,
		recipient:  recipient,
		logger:     log,
	}
}

func (w *EscalationWorker) Start() error {
	subject := fmt.Sprintf("events.%s", events.SessionEscalatedType)
	return w.subscriber.Subscribe(subject, "alert-worker", w.handle)
}

func (w *EscalationWorker) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	sessionID, _ := payload["session_id"].(string)
	question, _ := payload["question"].(string)
	reasonsJoined, _ := payload["reasons"].(string)

	var reasons []string
	if reasonsJoined != "" {
		reasons = strings.Split(reasonsJoined, ", ")
	}

	if w.mailer == nil || w.recipient == "" {
		// Nothing to deliver to; ack so the queue does not back up.
		w.logger.Warn("EscalationWorker", "No alert recipient configured, dropping event", map[string]interface{}{
			"session_id": sessionID,
		})
		return nil
	}

	if err := w.mailer.SendEscalationAlert(w.recipient, sessionID, question, reasons); err != nil {
		w.logger.Error("EscalationWorker", "Failed to send escalation alert", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}

	w.logger.Info("EscalationWorker", "Escalation alert delivered", map[string]interface{}{
		"session_id": sessionID,
	})
	return nil
}
