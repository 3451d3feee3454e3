package dto

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a real-time event pushed to connected clients over the
// websocket hub. Not persisted; clients that are offline miss it.
type Notification struct {
	Id        uuid.UUID              `json:"id"`
	UserId    uuid.UUID              `json:"user_id,omitempty"`
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
