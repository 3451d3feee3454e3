package websearch

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="results">
  <div class="result">
    <a class="result__a" href="https://example.com/1">First result</a>
    <a class="result__snippet" href="https://example.com/1">First <b>snippet</b> text.</a>
  </div>
  <div class="result">
    <a class="result__snippet other-class" href="https://example.com/2">
      Second snippet text.
    </a>
  </div>
  <div class="result">
    <a class="result__snippet" href="https://example.com/3">   </a>
  </div>
</body></html>`

func TestExtractSnippets(t *testing.T) {
	snippets, err := extractSnippets(strings.NewReader(resultsPage))
	require.NoError(t, err)

	require.Len(t, snippets, 2, "whitespace-only snippets must be dropped")
	assert.Equal(t, "First snippet text.", snippets[0], "nested markup must flatten to text")
	assert.Equal(t, "Second snippet text.", snippets[1], "surrounding whitespace must be trimmed")
}

func TestExtractSnippetsNoResults(t *testing.T) {
	snippets, err := extractSnippets(strings.NewReader(`<html><body><p>No results.</p></body></html>`))
	require.NoError(t, err)
	assert.Empty(t, snippets)
}

func TestHasClass(t *testing.T) {
	snippets, err := extractSnippets(strings.NewReader(
		`<html><body><span class="result__snippet_extra">decoy</span><span class="a result__snippet b">real</span></body></html>`))
	require.NoError(t, err)

	// Class matching is token-wise, not substring.
	require.Len(t, snippets, 1)
	assert.Equal(t, "real", snippets[0])
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	d := NewDuckDuckGo(nil, 0, log.New(io.Discard, "", 0))

	docs, ok := d.fromCache(context.Background(), "any query")
	assert.False(t, ok)
	assert.Nil(t, docs)

	// Must be a no-op, not a panic.
	d.toCache(context.Background(), "any query", nil)
}
