package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	DocumentId uuid.UUID `json:"document_id" validate:"required"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id         uuid.UUID  `json:"id"`
	DocumentId uuid.UUID  `json:"document_id"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Chat      string    `json:"chat"`
	Followups []string  `json:"followups,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StreamChatRequest struct {
	ChatSessionId uuid.UUID `json:"chat_session_id" validate:"required"`
	Question      string    `json:"question" validate:"required"`
}

// StreamChatResponse is the post-stream result of one chat turn, delivered
// after the last token.
type StreamChatResponse struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	Answer        string    `json:"answer"`
	Found         bool      `json:"found"`
	Followups     []string  `json:"followups,omitempty"`
}

// StreamChatEvent is one SSE frame of a streaming answer. Exactly one of the
// fields is meaningful per frame: Token for content chunks, Done for the
// terminal marker, Final for the post-stream result.
type StreamChatEvent struct {
	Token     string   `json:"token,omitempty"`
	Done      bool     `json:"done,omitempty"`
	Final     bool     `json:"final,omitempty"`
	Answer    string   `json:"answer,omitempty"`
	Found     bool     `json:"found,omitempty"`
	Followups []string `json:"followups,omitempty"`
}
