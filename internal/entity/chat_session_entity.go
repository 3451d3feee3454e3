package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one Q&A conversation bound to a single analyzed document.
type ChatSession struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	DocumentId uuid.UUID
	Title      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
	IsDeleted  bool
}
