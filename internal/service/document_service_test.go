package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"dealagent-be/internal/dto"
	"dealagent-be/internal/entity"
	"dealagent-be/internal/repository/contract"
	"dealagent-be/internal/repository/specification"
	"dealagent-be/internal/repository/unitofwork"
	"dealagent-be/pkg/embedding"
	"dealagent-be/pkg/llm"
	"dealagent-be/pkg/rag/search"

	"github.com/google/uuid"
)

// syncBuffer lets the test read log output while the email goroutine is
// still writing to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeDocumentRepo struct{}

func (r *fakeDocumentRepo) Create(ctx context.Context, document *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Update(ctx context.Context, document *entity.Document) error { return nil }
func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	return nil, nil
}
func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return nil, nil
}
func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.DocumentStatus) error {
	return nil
}

type fakeChunkRepo struct{}

func (r *fakeChunkRepo) Create(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (r *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}
func (r *fakeChunkRepo) Update(ctx context.Context, chunk *entity.DocumentChunk) error { return nil }
func (r *fakeChunkRepo) Delete(ctx context.Context, id uuid.UUID) error                { return nil }
func (r *fakeChunkRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (r *fakeChunkRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return nil, nil
}
func (r *fakeChunkRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (r *fakeChunkRepo) SetEmbedding(ctx context.Context, id uuid.UUID, vec []float32) error {
	return nil
}
func (r *fakeChunkRepo) SearchSimilarWithScore(ctx context.Context, vec []float32, limit int, documentId uuid.UUID, threshold float64) ([]*contract.ScoredDocumentChunk, error) {
	return nil, nil
}

type fakeAnalysisRepo struct{}

func (r *fakeAnalysisRepo) Create(ctx context.Context, analysis *entity.Analysis) error { return nil }
func (r *fakeAnalysisRepo) Update(ctx context.Context, analysis *entity.Analysis) error { return nil }
func (r *fakeAnalysisRepo) Delete(ctx context.Context, id uuid.UUID) error              { return nil }
func (r *fakeAnalysisRepo) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return nil
}
func (r *fakeAnalysisRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Analysis, error) {
	return nil, nil
}
func (r *fakeAnalysisRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Analysis, error) {
	return nil, nil
}
func (r *fakeAnalysisRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}

type fakeUnitOfWork struct {
	documents *fakeDocumentRepo
	chunks    *fakeChunkRepo
	analyses  *fakeAnalysisRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository             { return nil }
func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository     { return u.documents }
func (u *fakeUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return u.chunks
}
func (u *fakeUnitOfWork) AnalysisRepository() contract.AnalysisRepository         { return u.analyses }
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository   { return nil }
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository   { return nil }

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakePublisherService struct{}

func (p *fakePublisherService) Publish(ctx context.Context, payload []byte) error { return nil }

// fakeProvider fails every generation so the pipeline degrades to its
// neutral defaults; Upload must still complete.
type fakeProvider struct{}

func (p *fakeProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}

func (p *fakeProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("model unavailable")
}

func (p *fakeProvider) Stream(ctx context.Context, prompt string, options ...llm.Option) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {}
}

type fakeEmbedder struct{}

func (e *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingValues{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type failingEmailService struct{}

func (s *failingEmailService) SendAnalysisSummary(toEmail, documentTitle, verdictSummary string) error {
	return errors.New("smtp connection refused")
}

func TestUploadEmailFailureIsLoggedNotFatal(t *testing.T) {
	out := &syncBuffer{}
	logger := log.New(out, "", 0)

	orchestrator := search.NewOrchestrator(&fakeEmbedder{}, log.New(io.Discard, "", 0))

	svc := NewDocumentService(
		&fakeUowFactory{uow: &fakeUnitOfWork{
			documents: &fakeDocumentRepo{},
			chunks:    &fakeChunkRepo{},
			analyses:  &fakeAnalysisRepo{},
		}},
		&fakePublisherService{},
		&fakeProvider{},
		orchestrator,
		nil,
		"enterprise software procurement",
		&failingEmailService{},
		nil,
		logger,
	)

	resp, err := svc.Upload(context.Background(), uuid.New(), &dto.UploadDocumentRequest{
		Title:       "Network Overhaul RFP",
		RawText:     "The client requests a complete network overhaul across three sites.",
		NotifyEmail: "analyst@example.com",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v, want nil", err)
	}
	if resp == nil {
		t.Fatal("Upload() response = nil, want non-nil")
	}
	if resp.Document.Status != string(entity.DocumentStatusAnalyzed) {
		t.Errorf("Document.Status = %q, want %q", resp.Document.Status, entity.DocumentStatusAnalyzed)
	}

	// The notification email is sent from a goroutine; give it a moment.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if strings.Contains(out.String(), "[WARN] Failed to send analysis summary email") {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("email failure warning not logged, log output:\n%s", out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}
