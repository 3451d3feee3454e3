package dto

import (
	"time"

	"github.com/google/uuid"

	"dealagent-be/pkg/agent"
)

// UploadDocumentRequest carries the extracted text of one RFP. Text
// extraction from the source file happens client-side or in a separate
// service; this API only accepts plain text.
type UploadDocumentRequest struct {
	Title   string `json:"title" validate:"required"`
	RawText string `json:"raw_text" validate:"required"`
	// NotifyEmail optionally receives the executive summary when the
	// analysis completes.
	NotifyEmail string `json:"notify_email,omitempty" validate:"omitempty,email"`
}

type DocumentResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// AnalysisResponse is the full persisted pipeline outcome for one document.
type AnalysisResponse struct {
	DocumentId uuid.UUID `json:"document_id"`

	Summary    string         `json:"summary"`
	Action     string         `json:"action"`
	TotalFlags int            `json:"total_flags"`
	RedFlags   agent.RedFlags `json:"red_flags"`

	StrategicScore float64                   `json:"strategic_score"`
	IsQualified    bool                      `json:"is_qualified"`
	Scores         agent.StrategyScores      `json:"scores"`
	Explanation    agent.StrategyExplanation `json:"explanation"`

	ReadinessScore       float64                    `json:"readiness_score"`
	ReadinessBreakdown   agent.ReadinessScores      `json:"readiness_breakdown"`
	ReadinessExplanation agent.ReadinessExplanation `json:"readiness_explanation"`

	CreatedAt time.Time `json:"created_at"`
}

// PublishEmbedChunkMessage is the queue payload asking the embedding worker
// to vectorize one stored chunk.
type PublishEmbedChunkMessage struct {
	ChunkId uuid.UUID `json:"chunk_id"`
}

type UploadDocumentResponse struct {
	Document DocumentResponse `json:"document"`
	Analysis AnalysisResponse `json:"analysis"`
}
