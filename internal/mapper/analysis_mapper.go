package mapper

import (
	"encoding/json"
	"time"

	"dealagent-be/internal/entity"
	"dealagent-be/internal/model"
	"dealagent-be/pkg/agent"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalysisMapper converts between the analysis entity and its persistence
// model. The structured stage outputs (flags, sub-scores, explanations) are
// stored as JSONB columns.
type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

func (m *AnalysisMapper) ToEntity(a *model.Analysis) *entity.Analysis {
	if a == nil {
		return nil
	}

	var deletedAt *time.Time
	if a.DeletedAt.Valid {
		t := a.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !a.UpdatedAt.IsZero() {
		t := a.UpdatedAt
		updatedAt = &t
	}

	e := &entity.Analysis{
		Id:             a.Id,
		DocumentId:     a.DocumentId,
		Summary:        a.Summary,
		Action:         agent.Action(a.Action),
		TotalFlags:     a.TotalFlags,
		RedFlags:       agent.UnknownRedFlags(),
		StrategicScore: a.StrategicScore,
		IsQualified:    a.IsQualified,
		ReadinessScore: a.ReadinessScore,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      a.DeletedAt.Valid,
	}

	// Unmarshal failures leave the zero value in place; a corrupt column must
	// not make the whole record unreadable.
	unmarshalJSON(a.RedFlags, &e.RedFlags)
	unmarshalJSON(a.Scores, &e.Scores)
	unmarshalJSON(a.Explanation, &e.Explanation)
	unmarshalJSON(a.ReadinessBreakdown, &e.ReadinessBreakdown)
	unmarshalJSON(a.ReadinessExplanation, &e.ReadinessExplanation)

	return e
}

func (m *AnalysisMapper) ToModel(a *entity.Analysis) *model.Analysis {
	if a == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if a.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *a.DeletedAt, Valid: true}
	} else if a.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if a.UpdatedAt != nil {
		updatedAt = *a.UpdatedAt
	}

	return &model.Analysis{
		Id:                   a.Id,
		DocumentId:           a.DocumentId,
		Summary:              a.Summary,
		Action:               string(a.Action),
		TotalFlags:           a.TotalFlags,
		RedFlags:             marshalJSON(a.RedFlags),
		StrategicScore:       a.StrategicScore,
		IsQualified:          a.IsQualified,
		Scores:               marshalJSON(a.Scores),
		Explanation:          marshalJSON(a.Explanation),
		ReadinessScore:       a.ReadinessScore,
		ReadinessBreakdown:   marshalJSON(a.ReadinessBreakdown),
		ReadinessExplanation: marshalJSON(a.ReadinessExplanation),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            updatedAt,
		DeletedAt:            deletedAt,
	}
}

func marshalJSON(v interface{}) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func unmarshalJSON(raw datatypes.JSON, dst interface{}) {
	if len(raw) == 0 {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
