package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Analysis struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Summary    string `gorm:"type:text"`
	Action     string `gorm:"type:varchar(50);not null;default:'proceed'"`
	TotalFlags int    `gorm:"default:0"`
	RedFlags   datatypes.JSON

	StrategicScore float64 `gorm:"default:0"`
	IsQualified    bool    `gorm:"default:false"`
	Scores         datatypes.JSON
	Explanation    datatypes.JSON

	ReadinessScore       float64 `gorm:"default:0"`
	ReadinessBreakdown   datatypes.JSON
	ReadinessExplanation datatypes.JSON

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Analysis) TableName() string {
	return "analyses"
}
