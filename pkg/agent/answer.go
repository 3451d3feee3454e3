package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"dealagent-be/pkg/store"
	"dealagent-be/pkg/stream"
)

// NotFoundSentinel is the exact string the generator is instructed to return
// when no context answers the question. Its presence flips answerFound off and
// arms the web fallback.
const NotFoundSentinel = "Not found in available context."

const answerTopK = 4

const contextSeparator = "\n---\n"

// Conversational placeholders the generator sometimes returns instead of the
// sentinel. Matched case-insensitively against the full output; any hit is
// treated as "not found" so the fallback edge still fires.
var genericReplies = []string{
	"what is your question",
	"i'm ready",
	"ok. i'm ready",
	"okay, i understand",
	"i understand",
}

var (
	followupLabelRe = regexp.MustCompile(`(?i)follow[- ]?up questions?:`)
	followupSplitRe = regexp.MustCompile(`\n|\d+[.)]|[-•*] `)
)

// streamAnswer answers the current question from document context, web
// context, and the prior stages' findings, streaming sentence-aligned chunks
// to the sink as they form. It fully overwrites generation, answerFound and
// followupSuggestions each pass, so the fallback re-entry needs no cross-pass
// merging.
func (p *Pipeline) streamAnswer(ctx context.Context, s State, onToken TokenSink) Update {
	docs := s.DocResults
	if len(docs) == 0 && p.retriever != nil {
		found, err := p.retriever.Search(ctx, s.Question, answerTopK)
		if err != nil {
			p.logger.Printf("[WARN] Retrieval failed, answering without document context: %v", err)
		} else {
			docs = found
		}
	}

	prompt := p.answerPrompt(s, joinContents(docs), joinContents(s.WebScrapedDocuments))

	var (
		buf  stream.Buffer
		full strings.Builder
	)
	for token, err := range p.llm.Stream(ctx, prompt) {
		if err != nil {
			p.logger.Printf("[WARN] Answer stream aborted: %v", err)
			break
		}
		if token == "" {
			continue
		}
		full.WriteString(token)
		if chunk := buf.Write(token); chunk != "" {
			onToken(chunk)
		}
	}
	if residue := buf.Flush(); strings.TrimSpace(residue) != "" {
		onToken(residue)
	}
	onToken(DoneToken)

	output := full.String()
	found := answerFound(output)
	followups := extractFollowups(output)

	p.logger.Printf("[ANSWER] %d chars, answerFound=%t, followups=%d", len(output), found, len(followups))

	return Update{
		Generation:          &output,
		AnswerFound:         &found,
		FollowupSuggestions: &followups,
	}
}

func joinContents(docs []store.Document) string {
	contents := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Content != "" {
			contents = append(contents, d.Content)
		}
	}
	return strings.Join(contents, contextSeparator)
}

// answerFound classifies the assembled output. An empty output (a fully
// failed stream) also counts as not found so the fallback gets a chance.
func answerFound(output string) bool {
	lower := strings.ToLower(output)
	if strings.TrimSpace(lower) == "" {
		return false
	}
	if strings.Contains(lower, strings.ToLower(NotFoundSentinel)) {
		return false
	}
	for _, phrase := range genericReplies {
		if strings.Contains(lower, phrase) {
			return false
		}
	}
	return true
}

// extractFollowups pulls at most 3 suggestions from the labeled trailing list.
func extractFollowups(output string) []string {
	loc := followupLabelRe.FindStringIndex(output)
	if loc == nil {
		return nil
	}

	var followups []string
	for _, part := range followupSplitRe.Split(output[loc[1]:], -1) {
		q := strings.TrimSpace(part)
		if q == "" || strings.Contains(strings.ToLower(q), "not found") {
			continue
		}
		followups = append(followups, q)
		if len(followups) == 3 {
			break
		}
	}
	return followups
}

func (p *Pipeline) answerPrompt(s State, docContext, webContext string) string {
	if docContext == "" {
		docContext = "None"
	}
	if webContext == "" {
		webContext = "None"
	}

	var history strings.Builder
	for _, m := range s.Messages {
		role := "Assistant"
		if m.Role == "user" {
			role = "User"
		}
		fmt.Fprintf(&history, "%s: %s\n", role, m.Content)
	}

	return fmt.Sprintf(`You are a helpful AI assistant answering questions about an RFP evaluation.

You have access to:
1. DOCUMENT CONTEXT (from internal documents)
2. WEB CONTEXT (from recent internet results)
3. AGENT CONTEXT (from internal evaluation agents like Red Flag, Strategy, and Readiness)

DOCUMENT CONTEXT:
%s

WEB CONTEXT:
%s

AGENT CONTEXT:
Red Flag Verdict: %s
Total Flags: %d
Red Flags:
- Vendor Minimum Only: %s
- Biased Scope: %s
- Unrealistic Timeline or Budget: %s
- No Stakeholder Access: %s
- Missing Evaluation Criteria: %s

Strategic Score: %.2f / 1.75
Readiness Score: %.2f / 1.0

Explanations:
- Market Alignment: %s
- Win Probability: %s
- Delivery Capability: %s
- Business Justification: %s

Readiness Explanation:
- Stakeholder Clarity: %s
- Decision-Maker Access: %s
- Project Background: %s

---
RFP TEXT:
%s

CHAT HISTORY:
%s
USER QUESTION:
%s

Instructions:
Use agent insights and context first to answer questions about red flags, strategic score, or readiness.
Fallback to document and web context only if the question isn't about agent results. When answering from web context, say so explicitly.
End with 3 follow-up questions the user could ask next. Only suggest questions that can be answered from the RFP text. Questions must be based on the current context above.
If nothing is relevant, respond exactly with: "%s"

Format them like:
Follow-up questions:
1. ...
2. ...
3. ...`,
		docContext, webContext,
		s.Action, s.TotalFlags,
		s.RedFlags.VendorMinimumOnly,
		s.RedFlags.BiasedScope,
		s.RedFlags.UnrealisticTimelineOrBudget,
		s.RedFlags.NoStakeholderAccess,
		s.RedFlags.MissingEvaluationCriteria,
		s.StrategicScore, s.ReadinessScore,
		s.Explanation.MarketAlignment,
		s.Explanation.WinProbability,
		s.Explanation.DeliveryCapability,
		s.Explanation.BusinessJustification,
		s.ReadinessExplanation.StakeholderClarity,
		s.ReadinessExplanation.DecisionMakerAccess,
		s.ReadinessExplanation.ProjectBackground,
		s.RawText,
		history.String(),
		s.Question,
		NotFoundSentinel)
}
