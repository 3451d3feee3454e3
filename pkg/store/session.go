package store

// Session represents the active chat session state kept in memory between
// turns. The durable record lives in postgres; this copy spares a lookup of
// the session's document binding on every turn.
type Session struct {
	ID         string `json:"id"` // ChatSessionID
	UserID     string `json:"user_id"`
	DocumentID string `json:"document_id"`

	// Last question asked in this session
	LastQuery string `json:"last_query"`
}
