package service

import (
	"context"
	"errors"
	"log"
	"time"

	"dealagent-be/internal/constant"
	"dealagent-be/internal/dto"
	"dealagent-be/internal/entity"
	"dealagent-be/internal/repository/memory"
	"dealagent-be/internal/repository/specification"
	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/pkg/agent"
	"dealagent-be/pkg/llm"
	"dealagent-be/pkg/rag/search"
	"dealagent-be/pkg/store"

	"github.com/google/uuid"
)

const sessionTitleMaxLen = 80

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, onToken agent.TokenSink) (*dto.StreamChatResponse, error)
}

type chatService struct {
	uowFactory         unitofwork.RepositoryFactory
	llmProvider        llm.LLMProvider
	searchOrchestrator *search.Orchestrator
	webSearcher        agent.WebSearcher
	domainMetadata     string
	sessionRepo        *memory.SessionRepository
	llmLogger          *log.Logger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	searchOrchestrator *search.Orchestrator,
	webSearcher agent.WebSearcher,
	domainMetadata string,
	sessionRepo *memory.SessionRepository,
	llmLogger *log.Logger,
) IChatService {
	return &chatService{
		uowFactory:         uowFactory,
		llmProvider:        llmProvider,
		searchOrchestrator: searchOrchestrator,
		webSearcher:        webSearcher,
		domainMetadata:     domainMetadata,
		sessionRepo:        sessionRepo,
		llmLogger:          llmLogger,
	}
}

// CreateSession opens a conversation bound to one analyzed document.
func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: req.DocumentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found or access denied")
	}
	if document.Status != entity.DocumentStatusAnalyzed {
		return nil, errors.New("document has not been analyzed yet")
	}

	now := time.Now()
	chatSession := entity.ChatSession{
		Id:         uuid.New(),
		UserId:     userId,
		DocumentId: document.Id,
		Title:      "Unnamed session",
		CreatedAt:  now,
	}

	chatMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          "Hi, ask me anything about this proposal.",
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &chatMessage); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.sessionRepo.Save(&store.Session{
		ID:         chatSession.Id.String(),
		UserID:     userId.String(),
		DocumentID: document.Id.String(),
	})

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:         s.Id,
			DocumentId: s.DocumentId,
			Title:      s.Title,
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		resp = append(resp, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Chat:      msg.Chat,
			Followups: msg.Followups,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.verifySession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}

	cs.sessionRepo.Delete(sessionId.String())

	return uow.Commit()
}

// StreamChat answers one question about the session's document, pushing
// tokens to the sink as they form. The committed turn (user question plus
// assistant answer with followups) is persisted after the stream ends.
func (cs *chatService) StreamChat(ctx context.Context, userId uuid.UUID, req *dto.StreamChatRequest, onToken agent.TokenSink) (*dto.StreamChatResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.verifySession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: chatSession.DocumentId})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document no longer exists")
	}

	analysis, err := uow.AnalysisRepository().FindOne(ctx, specification.ByDocumentID{DocumentID: chatSession.DocumentId})
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, errors.New("analysis not available for this document")
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: req.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(chatMessages))
	firstQuestion := true
	for _, msg := range chatMessages {
		role := "assistant"
		if msg.Role == constant.ChatMessageRoleUser {
			role = "user"
			firstQuestion = false
		}
		history = append(history, llm.Message{Role: role, Content: msg.Chat})
	}

	state := seedState(document.RawText, req.Question, history, analysis)

	pipeline := agent.NewPipeline(
		cs.llmProvider,
		cs.searchOrchestrator.Bind(uow, chatSession.DocumentId),
		cs.webSearcher,
		cs.domainMetadata,
		cs.llmLogger,
	)
	final := pipeline.AnswerQuestion(ctx, state, onToken)

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          req.Question,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: chatSession.Id,
		CreatedAt:     now,
	}
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		Chat:          final.Generation,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: chatSession.Id,
		Followups:     final.FollowupSuggestions,
		CreatedAt:     now.Add(1 * time.Second),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}

	if firstQuestion {
		chatSession.Title = truncateTitle(req.Question)
		updatedAt := now
		chatSession.UpdatedAt = &updatedAt
		if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.sessionRepo.Save(&store.Session{
		ID:         chatSession.Id.String(),
		UserID:     userId.String(),
		DocumentID: chatSession.DocumentId.String(),
		LastQuery:  req.Question,
	})

	return &dto.StreamChatResponse{
		ChatSessionId: chatSession.Id,
		Answer:        final.Generation,
		Found:         final.AnswerFound,
		Followups:     final.FollowupSuggestions,
	}, nil
}

func (cs *chatService) verifySession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	chatSession, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if chatSession == nil {
		return nil, errors.New("session not found or access denied")
	}
	return chatSession, nil
}

// seedState builds the walk state for a chat turn from the persisted
// analysis, so the answer stage sees the evaluators' findings without
// re-running them.
func seedState(rawText, question string, history []llm.Message, analysis *entity.Analysis) agent.State {
	state := agent.NewState(rawText, question)
	state.Messages = history

	state.RedFlags = analysis.RedFlags
	state.TotalFlags = analysis.TotalFlags
	state.Action = analysis.Action

	state.StrategicScore = analysis.StrategicScore
	state.Scores = analysis.Scores
	state.Explanation = analysis.Explanation
	state.IsQualified = analysis.IsQualified

	state.ReadinessScore = analysis.ReadinessScore
	state.ReadinessBreakdown = analysis.ReadinessBreakdown
	state.ReadinessExplanation = analysis.ReadinessExplanation

	state.Summary = analysis.Summary

	return state
}

func truncateTitle(question string) string {
	runes := []rune(question)
	if len(runes) <= sessionTitleMaxLen {
		return question
	}
	return string(runes[:sessionTitleMaxLen]) + "..."
}
