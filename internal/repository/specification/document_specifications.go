package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocumentID struct {
	DocumentID uuid.UUID
}

func (s ByDocumentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_id = ?", s.DocumentID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// Unembedded selects chunks still waiting for their embedding vector.
type Unembedded struct{}

func (s Unembedded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedded = ?", false)
}
