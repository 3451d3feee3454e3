package agent

import (
	"context"

	"dealagent-be/pkg/store"
)

// Retriever searches the indexed document corpus. Implementations must catch
// their own backend errors where possible; the pipeline treats any error as an
// empty result set.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]store.Document, error)
}

// WebSearcher fetches public search-engine snippets for the fallback pass.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]store.Document, error)
}

// TokenSink receives ordered answer chunks followed by exactly one DoneToken.
type TokenSink func(token string)

// DoneToken is the terminal marker emitted to a TokenSink after the last
// content chunk. It is never part of answer content.
const DoneToken = "[DONE]"
