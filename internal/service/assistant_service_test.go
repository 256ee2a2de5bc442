// FILE: internal/service/assistant_service_test.go
package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"school-concierge-be/internal/constant"
	"school-concierge-be/internal/dto"
	"school-concierge-be/internal/entity"
	"school-concierge-be/internal/repository/contract"
	"school-concierge-be/internal/repository/memory"
	"school-concierge-be/internal/repository/specification"
	"school-concierge-be/internal/repository/unitofwork"
	"school-concierge-be/pkg/answers"
	"school-concierge-be/pkg/embedding"
	"school-concierge-be/pkg/formatter"
	"school-concierge-be/pkg/llm"
	"school-concierge-be/pkg/policy"
	"school-concierge-be/pkg/resolve"
	"school-concierge-be/pkg/vectorindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory doubles for the repository layer.

type fakeSessionRepo struct {
	sessions map[string]*entity.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *fakeSessionRepo) clone(s *entity.Session) *entity.Session {
	if s == nil {
		return nil
	}
	copied := *s
	return &copied
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.sessions[session.SessionID] = r.clone(session)
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.Session) error {
	r.sessions[session.SessionID] = r.clone(session)
	return nil
}

func (r *fakeSessionRepo) Upsert(ctx context.Context, session *entity.Session) error {
	r.sessions[session.SessionID] = r.clone(session)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	for _, spec := range specs {
		if s, ok := spec.(specification.BySessionID); ok {
			return r.clone(r.sessions[s.SessionID]), nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindOneForUpdate(ctx context.Context, sessionID string) (*entity.Session, error) {
	return r.clone(r.sessions[sessionID]), nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var status string
	for _, spec := range specs {
		if s, ok := spec.(specification.ByStatus); ok {
			status = s.Status
		}
	}
	var out []*entity.Session
	for _, s := range r.sessions {
		if status == "" || s.Status == status {
			out = append(out, r.clone(s))
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.sessions)), nil
}

type fakeUnitOfWork struct {
	sessions *fakeSessionRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) SessionRepository() contract.SessionRepository { return u.sessions }
func (u *fakeUnitOfWork) KbDocumentRepository() contract.KbDocumentRepository {
	return nil
}

type fakeUowFactory struct {
	sessions *fakeSessionRepo
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{sessions: f.sessions}
}

type fakeNotifier struct {
	calls   int
	lastID  string
	reasons []string
	err     error
}

func (n *fakeNotifier) NotifyEscalation(ctx context.Context, sessionID, question string, reasons []string) error {
	n.calls++
	n.lastID = sessionID
	n.reasons = reasons
	return n.err
}

type pushRecord struct {
	sessionID   string
	messageType string
	payload     interface{}
}

type fakePusher struct {
	sent []pushRecord
}

func (p *fakePusher) Send(sessionID string, messageType string, payload interface{}) {
	p.sent = append(p.sent, pushRecord{sessionID: sessionID, messageType: messageType, payload: payload})
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: s.vector},
	}, nil
}

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

// Test harness

type harness struct {
	service  IAssistantService
	sessions *fakeSessionRepo
	notifier *fakeNotifier
	pusher   *fakePusher
	llm      *stubLLM
}

func newHarness(t *testing.T, retrievalReply string, docs []vectorindex.Document) *harness {
	t.Helper()

	data := `{
  "entries": [
    {"keys": ["what are the fees"], "answer": "Fees are published termly.", "link": "https://example.org/fees", "label": "Fees page"}
  ],
  "links": {},
  "labels": {}
}`
	path := filepath.Join(t.TempDir(), "answers.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	table, err := answers.Load(path, answers.DefaultFuzzyThreshold)
	require.NoError(t, err)

	model := &stubLLM{reply: retrievalReply}
	resolver := resolve.New(
		table,
		vectorindex.New(docs),
		&stubEmbedder{vector: []float32{1, 0}},
		model,
		5,
		nil,
	)

	escalationPolicy, err := policy.New(policy.Config{
		SensitiveKeywords:   []string{"bullying", "abuse", "harassment"},
		ConfidenceThreshold: 0.7,
	}, nil)
	require.NoError(t, err)

	sessions := newFakeSessionRepo()
	notifier := &fakeNotifier{}
	pusher := &fakePusher{}

	svc := NewAssistantService(
		&fakeUowFactory{sessions: sessions},
		resolver,
		escalationPolicy,
		formatter.New(constant.AssistantGreeting, constant.ClosingPrompt),
		memory.NewResolutionCache(),
		notifier,
		pusher,
		nopLogger{},
	)

	return &harness{service: svc, sessions: sessions, notifier: notifier, pusher: pusher, llm: model}
}

func strongDocs() []vectorindex.Document {
	return []vectorindex.Document{
		{ID: "a", Text: "The sixth form offers 20 subjects.", Embedding: []float32{1, 0}},
	}
}

func weakDocs() []vectorindex.Document {
	// Nearly orthogonal to the stub query vector, so confidence is low.
	return []vectorindex.Document{
		{ID: "a", Text: "Unrelated passage.", Embedding: []float32{0.05, 1}},
	}
}

func TestAskValidation(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "   "})

	var validationErr *entity.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestAskCuratedAnswer(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What are the fees?"})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusBot, res.Status)
	// Clients see the coarse answer source; the resolution tier stays in
	// the audit meta.
	assert.Equal(t, entity.AnswerSourceBot, res.Source)
	assert.NotEmpty(t, res.SessionID)
	assert.True(t, strings.HasPrefix(res.Answer, constant.AssistantGreeting), res.Answer)
	assert.True(t, strings.HasSuffix(res.Answer, constant.ClosingPrompt), res.Answer)
	assert.Contains(t, res.Answer, "Fees are published termly.")

	stored := h.sessions.sessions[res.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, entity.SessionStatusBot, stored.Status)
	assert.Equal(t, res.Answer, *stored.BotResponse)
	assert.Equal(t, resolve.SourceStatic, stored.Meta.Source)
	assert.Equal(t, 0, h.notifier.calls)
}

func TestAskGreetingOnEveryBotAnswer(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())

	first, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What are the fees?"})
	require.NoError(t, err)

	// A follow-up turn in the same session is still a bot answer, so it is
	// greeted again; only human replies skip the house opening.
	second, err := h.service.Ask(context.Background(), &dto.AskRequest{SessionID: first.SessionID, Question: "what are the fees"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(second.Answer, constant.AssistantGreeting), second.Answer)
}

func TestAskPushesBotAnswer(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What are the fees?"})
	require.NoError(t, err)

	require.Len(t, h.pusher.sent, 1)
	assert.Equal(t, res.SessionID, h.pusher.sent[0].sessionID)
	// The push payload mirrors the Ask response exactly.
	assert.Equal(t, res, h.pusher.sent[0].payload)
}

func TestAskSensitiveQuestionEscalates(t *testing.T) {
	h := newHarness(t, "generated draft", strongDocs())

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "My daughter is experiencing bullying at school"})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPending, res.Status)
	assert.Equal(t, entity.AnswerSourceSystem, res.Source)
	assert.Equal(t, constant.AwaitingReviewMessage, res.Answer)

	stored := h.sessions.sessions[res.SessionID]
	require.NotNil(t, stored)
	assert.Equal(t, entity.SessionStatusPending, stored.Status)
	// The draft is kept for the audit trail, never shown to the visitor.
	require.NotNil(t, stored.BotResponse)
	assert.NotEqual(t, res.Answer, *stored.BotResponse)
	require.NotEmpty(t, stored.Meta.Reasons)
	assert.Contains(t, stored.Meta.Reasons[0], policy.ReasonSensitiveKeyword)

	assert.Equal(t, 1, h.notifier.calls)
	assert.Equal(t, res.SessionID, h.notifier.lastID)

	// The pending transition is pushed so an open socket learns the session
	// went to review without polling.
	require.Len(t, h.pusher.sent, 1)
	assert.Equal(t, res, h.pusher.sent[0].payload)
}

func TestAskLowConfidenceEscalates(t *testing.T) {
	h := newHarness(t, "vague guess", weakDocs())

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "Does the school run a chess club?"})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPending, res.Status)
	stored := h.sessions.sessions[res.SessionID]
	require.NotNil(t, stored)
	assert.Contains(t, stored.Meta.Reasons, policy.ReasonLowConfidence)
}

func TestAskNotifierFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, "draft", strongDocs())
	h.notifier.err = entity.ErrNotifierFailure

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "I need to report abuse"})
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusPending, res.Status)
}

func TestAskPendingSessionShortCircuits(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())
	h.sessions.sessions["s1"] = &entity.Session{
		SessionID: "s1",
		Question:  "earlier question",
		Status:    entity.SessionStatusPending,
	}

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{SessionID: "s1", Question: "any update?"})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusPending, res.Status)
	assert.Equal(t, entity.AnswerSourceSystem, res.Source)
	assert.Equal(t, constant.AwaitingReviewMessage, res.Answer)
	// The waiting question is not overwritten and nothing new is pushed;
	// re-reading stored state is not a fresh answer.
	assert.Equal(t, "earlier question", h.sessions.sessions["s1"].Question)
	assert.Equal(t, 0, h.llm.calls)
	assert.Empty(t, h.pusher.sent)
}

func TestAskHumanSessionReturnsReplyVerbatim(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())
	humanReply := "Hi, this is Mrs Smith from the office. Yes, we have places in Year 9."
	h.sessions.sessions["s2"] = &entity.Session{
		SessionID:     "s2",
		Question:      "do you have places",
		HumanResponse: &humanReply,
		Status:        entity.SessionStatusHuman,
	}

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{SessionID: "s2", Question: "anything?"})
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusHuman, res.Status)
	assert.Equal(t, entity.AnswerSourceHuman, res.Source)
	// No greeting, no closing, no reformatting.
	assert.Equal(t, humanReply, res.Answer)
}

func TestAskRetrievalFailureLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())
	h.llm.err = errors.New("model down")

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{SessionID: "s3", Question: "uncurated question"})
	assert.ErrorIs(t, err, entity.ErrRetrievalFailure)
	assert.Nil(t, h.sessions.sessions["s3"])
}

func TestStatusReturnsAskShape(t *testing.T) {
	h := newHarness(t, "reply", strongDocs())

	bot := "Formatted bot answer."
	draft := "suppressed draft"
	human := "Human reply."

	h.sessions.sessions["bot"] = &entity.Session{
		SessionID: "bot", Question: "q", BotResponse: &bot, Status: entity.SessionStatusBot,
		Meta: entity.SessionMeta{URL: "https://example.org/fees", LinkLabel: "Fees page"},
	}
	h.sessions.sessions["pending"] = &entity.Session{
		SessionID: "pending", Question: "q", BotResponse: &draft, Status: entity.SessionStatusPending,
	}
	h.sessions.sessions["human"] = &entity.Session{
		SessionID: "human", Question: "q", BotResponse: &draft, HumanResponse: &human, Status: entity.SessionStatusHuman,
	}

	res, err := h.service.Status(context.Background(), "bot")
	require.NoError(t, err)
	assert.Equal(t, bot, res.Answer)
	assert.Equal(t, entity.AnswerSourceBot, res.Source)
	assert.Equal(t, "https://example.org/fees", res.URL)
	assert.Equal(t, "Fees page", res.LinkLabel)

	res, err = h.service.Status(context.Background(), "pending")
	require.NoError(t, err)
	// Pending reads the fixed awaiting-review text, never the hidden draft.
	assert.Equal(t, constant.AwaitingReviewMessage, res.Answer)
	assert.Equal(t, entity.AnswerSourceSystem, res.Source)
	assert.NotContains(t, res.Answer, draft)

	res, err = h.service.Status(context.Background(), "human")
	require.NoError(t, err)
	assert.Equal(t, human, res.Answer)
	assert.Equal(t, entity.AnswerSourceHuman, res.Source)

	_, err = h.service.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrUnknownSession)
}
