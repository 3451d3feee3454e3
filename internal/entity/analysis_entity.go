package entity

import (
	"time"

	"github.com/google/uuid"

	"dealagent-be/pkg/agent"
)

// Analysis is the persisted outcome of one full pipeline walk over a
// document: the verdict, the executive summary, and every stage's scores and
// explanations.
type Analysis struct {
	Id         uuid.UUID
	DocumentId uuid.UUID

	Summary    string
	Action     agent.Action
	TotalFlags int
	RedFlags   agent.RedFlags

	StrategicScore float64
	IsQualified    bool
	Scores         agent.StrategyScores
	Explanation    agent.StrategyExplanation

	ReadinessScore       float64
	ReadinessBreakdown   agent.ReadinessScores
	ReadinessExplanation agent.ReadinessExplanation

	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
