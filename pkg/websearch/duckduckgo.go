package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/html"

	"dealagent-be/pkg/store"
)

const (
	searchEndpoint = "https://html.duckduckgo.com/html/"
	snippetClass   = "result__snippet"
	sourceLabel    = "duckduckgo"
	cacheKeyPrefix = "websearch:"
)

// DuckDuckGo scrapes result snippets from the DuckDuckGo HTML frontend. An
// optional redis client caches snippet sets per query so repeated fallback
// passes on the same question do not re-hit the search engine.
type DuckDuckGo struct {
	client   *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
	logger   *log.Logger
}

// NewDuckDuckGo creates the searcher. rdb may be nil to disable caching.
func NewDuckDuckGo(rdb *redis.Client, cacheTTL time.Duration, logger *log.Logger) *DuckDuckGo {
	return &DuckDuckGo{
		client:   &http.Client{Timeout: 15 * time.Second},
		rdb:      rdb,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Search fetches snippet texts for the query, each tagged with the source
// label and an ingestion timestamp.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]store.Document, error) {
	if cached, ok := d.fromCache(ctx, query); ok {
		d.logger.Printf("[CACHE] Web snippets served from cache for query %q", query)
		return cached, nil
	}

	searchURL := searchEndpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	snippets, err := extractSnippets(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	docs := make([]store.Document, 0, len(snippets))
	for _, text := range snippets {
		docs = append(docs, store.Document{
			Content: text,
			Metadata: map[string]interface{}{
				"source":    sourceLabel,
				"timestamp": now,
			},
		})
	}

	d.logger.Printf("[WEBSEARCH] Retrieved %d snippets for query %q", len(docs), query)
	d.toCache(ctx, query, docs)

	return docs, nil
}

// extractSnippets walks the result markup and collects the text of every
// element carrying the snippet class.
func extractSnippets(r io.Reader) ([]string, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var snippets []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, snippetClass) {
			if text := strings.TrimSpace(nodeText(n)); text != "" {
				snippets = append(snippets, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return snippets, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
	}
	return sb.String()
}

func (d *DuckDuckGo) fromCache(ctx context.Context, query string) ([]store.Document, bool) {
	if d.rdb == nil {
		return nil, false
	}
	raw, err := d.rdb.Get(ctx, cacheKeyPrefix+query).Bytes()
	if err != nil {
		return nil, false
	}
	var docs []store.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

func (d *DuckDuckGo) toCache(ctx context.Context, query string, docs []store.Document) {
	if d.rdb == nil || len(docs) == 0 {
		return
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return
	}
	if err := d.rdb.Set(ctx, cacheKeyPrefix+query, raw, d.cacheTTL).Err(); err != nil {
		d.logger.Printf("[WARN] Failed to cache web snippets: %v", err)
	}
}
