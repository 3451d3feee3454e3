package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"dealagent-be/internal/dto"
	"dealagent-be/internal/entity"
	"dealagent-be/internal/pkg/mailer"
	"dealagent-be/internal/repository/specification"
	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/pkg/agent"
	"dealagent-be/pkg/events"
	"dealagent-be/pkg/llm"
	pktNats "dealagent-be/pkg/nats"
	"dealagent-be/pkg/rag/search"
	"dealagent-be/pkg/utils"

	"github.com/google/uuid"
)

// Chunking parameters for proposal text.
// ChunkSize: 1000 chars, Overlap: 200 chars.
const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// initialQuestion drives the answer stage of the ingestion walk. The
// generation itself is discarded; only the evaluation stages' output is
// persisted.
const initialQuestion = "Provide an overall assessment of this proposal."

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error)
	GetAnalysis(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.AnalysisResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory         unitofwork.RepositoryFactory
	publisherService   IPublisherService
	llmProvider        llm.LLMProvider
	searchOrchestrator *search.Orchestrator
	webSearcher        agent.WebSearcher
	domainMetadata     string
	emailService       mailer.IEmailService
	eventPublisher     *pktNats.Publisher
	llmLogger          *log.Logger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	llmProvider llm.LLMProvider,
	searchOrchestrator *search.Orchestrator,
	webSearcher agent.WebSearcher,
	domainMetadata string,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	llmLogger *log.Logger,
) IDocumentService {
	return &documentService{
		uowFactory:         uowFactory,
		publisherService:   publisherService,
		llmProvider:        llmProvider,
		searchOrchestrator: searchOrchestrator,
		webSearcher:        webSearcher,
		domainMetadata:     domainMetadata,
		emailService:       emailService,
		eventPublisher:     eventPublisher,
		llmLogger:          llmLogger,
	}
}

// Upload stores the document and its chunks, queues the chunks for async
// embedding, then runs the full evaluation walk and persists the outcome.
func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	document := &entity.Document{
		Id:        uuid.New(),
		Title:     req.Title,
		RawText:   req.RawText,
		Status:    entity.DocumentStatusPending,
		UserId:    userId,
		CreatedAt: now,
	}

	pieces := utils.SplitText(req.RawText, chunkSize, chunkOverlap)
	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			DocumentId: document.Id,
			Content:    piece,
			ChunkIndex: i,
			Embedded:   false,
			CreatedAt:  now,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// Queue chunks for async embedding. The evaluation walk below reads the
	// raw text directly, so it does not wait for vectors.
	for _, chunk := range chunks {
		payload, err := json.Marshal(dto.PublishEmbedChunkMessage{ChunkId: chunk.Id})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	pipeline := agent.NewPipeline(
		s.llmProvider,
		s.searchOrchestrator.Bind(uow, document.Id),
		s.webSearcher,
		s.domainMetadata,
		s.llmLogger,
	)
	final := pipeline.Invoke(ctx, agent.NewState(document.RawText, initialQuestion), nil)

	analysis := &entity.Analysis{
		Id:         uuid.New(),
		DocumentId: document.Id,

		Summary:    final.Summary,
		Action:     final.Action,
		TotalFlags: final.TotalFlags,
		RedFlags:   final.RedFlags,

		StrategicScore: final.StrategicScore,
		IsQualified:    final.IsQualified,
		Scores:         final.Scores,
		Explanation:    final.Explanation,

		ReadinessScore:       final.ReadinessScore,
		ReadinessBreakdown:   final.ReadinessBreakdown,
		ReadinessExplanation: final.ReadinessExplanation,

		CreatedAt: time.Now(),
	}

	if err := uow.AnalysisRepository().Create(ctx, analysis); err != nil {
		return nil, err
	}
	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, entity.DocumentStatusAnalyzed); err != nil {
		return nil, err
	}
	document.Status = entity.DocumentStatusAnalyzed

	// PUBLISH EVENT
	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: "DOCUMENT_ANALYZED",
			Data: map[string]interface{}{
				"document_id": document.Id,
				"user_id":     userId,
				"action":      string(final.Action),
				"total_flags": final.TotalFlags,
			},
			OccurredAt: time.Now(),
		}
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.llmLogger.Printf("[WARN] Failed to publish DOCUMENT_ANALYZED event: %v", err)
		}
	}

	if req.NotifyEmail != "" {
		go func(toEmail, title, summary string) {
			if emailErr := s.emailService.SendAnalysisSummary(toEmail, title, summary); emailErr != nil {
				s.llmLogger.Printf("[WARN] Failed to send analysis summary email: %v", emailErr)
			}
		}(req.NotifyEmail, document.Title, final.Summary)
	}

	return &dto.UploadDocumentResponse{
		Document: toDocumentResponse(document),
		Analysis: toAnalysisResponse(analysis),
	}, nil
}

func (s *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.DocumentResponse, 0, len(documents))
	for _, d := range documents {
		resp := toDocumentResponse(d)
		response = append(response, &resp)
	}
	return response, nil
}

func (s *documentService) GetAnalysis(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) (*dto.AnalysisResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, errors.New("document not found or access denied")
	}

	analysis, err := uow.AnalysisRepository().FindOne(ctx, specification.ByDocumentID{DocumentID: documentId})
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, errors.New("analysis not available yet")
	}

	resp := toAnalysisResponse(analysis)
	return &resp, nil
}

func (s *documentService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return errors.New("document not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return err
	}
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}
	if err := uow.AnalysisRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return err
	}

	return uow.Commit()
}

func toDocumentResponse(d *entity.Document) dto.DocumentResponse {
	return dto.DocumentResponse{
		Id:        d.Id,
		Title:     d.Title,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toAnalysisResponse(a *entity.Analysis) dto.AnalysisResponse {
	return dto.AnalysisResponse{
		DocumentId: a.DocumentId,

		Summary:    a.Summary,
		Action:     string(a.Action),
		TotalFlags: a.TotalFlags,
		RedFlags:   a.RedFlags,

		StrategicScore: a.StrategicScore,
		IsQualified:    a.IsQualified,
		Scores:         a.Scores,
		Explanation:    a.Explanation,

		ReadinessScore:       a.ReadinessScore,
		ReadinessBreakdown:   a.ReadinessBreakdown,
		ReadinessExplanation: a.ReadinessExplanation,

		CreatedAt: a.CreatedAt,
	}
}
