package store

// Document represents a generic content fragment flowing through the RAG
// pipeline: a retrieved chunk of an uploaded proposal, or a scraped web
// snippet. Metadata carries source-specific fields (chunk index, source
// label, ingestion timestamp).
type Document struct {
	ID       string                 `json:"id"`
	Title    string                 `json:"title"`
	Content  string                 `json:"content"`
	Score    float32                `json:"score"`
	Metadata map[string]interface{} `json:"metadata"`
}
