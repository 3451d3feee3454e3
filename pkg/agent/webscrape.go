package agent

import "context"

// scrapeWeb runs the one-shot web fallback. hasScraped is set true on every
// outcome, including failure, which is what bounds the answer/webscrape cycle
// to a single retry.
func (p *Pipeline) scrapeWeb(ctx context.Context, s State) Update {
	scraped := true

	if p.web == nil {
		p.logger.Printf("[WARN] No web searcher configured, skipping fallback")
		return Update{HasScraped: &scraped}
	}

	docs, err := p.web.Search(ctx, s.Question)
	if err != nil {
		p.logger.Printf("[WARN] Web search failed: %v", err)
		return Update{HasScraped: &scraped}
	}

	p.logger.Printf("[WEBSCRAPE] Retrieved %d snippets", len(docs))

	return Update{WebScrapedDocuments: docs, HasScraped: &scraped}
}
