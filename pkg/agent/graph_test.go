package agent

import (
	"context"
	"errors"
	"io"
	"iter"
	"log"
	"math"
	"strings"
	"testing"

	"dealagent-be/pkg/llm"
	"dealagent-be/pkg/store"
)

// fakeLLM dispatches Generate by prompt content and replays a fixed token
// sequence for Stream.
type fakeLLM struct {
	generate func(prompt string) (string, error)
	stream   func(prompt string) ([]string, error)

	generatePrompts []string
	streamCalls     int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, _ ...llm.Option) (string, error) {
	f.generatePrompts = append(f.generatePrompts, prompt)
	if f.generate == nil {
		return "", errors.New("no generate configured")
	}
	return f.generate(prompt)
}

func (f *fakeLLM) Stream(ctx context.Context, prompt string, _ ...llm.Option) iter.Seq2[string, error] {
	f.streamCalls++
	var tokens []string
	var err error
	if f.stream != nil {
		tokens, err = f.stream(prompt)
	}
	return func(yield func(string, error) bool) {
		for _, tok := range tokens {
			if !yield(tok, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

type fakeRetriever struct {
	docs  []store.Document
	err   error
	calls int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, topK int) ([]store.Document, error) {
	f.calls++
	return f.docs, f.err
}

type fakeWebSearcher struct {
	docs  []store.Document
	err   error
	calls int
}

func (f *fakeWebSearcher) Search(ctx context.Context, query string) ([]store.Document, error) {
	f.calls++
	return f.docs, f.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestNextNode(t *testing.T) {
	tests := []struct {
		name  string
		from  node
		state State
		want  node
	}{
		{"redflag proceeds to strategy", nodeRedFlag, State{Action: ActionProceed}, nodeStrategy},
		{"redflag aborts to summary", nodeRedFlag, State{Action: ActionDoNotProceed}, nodeSummary},
		{"strategy to readiness", nodeStrategy, State{}, nodeReadiness},
		{"readiness to summary", nodeReadiness, State{}, nodeSummary},
		{"summary to answer", nodeSummary, State{}, nodeAnswer},
		{"answer found ends", nodeAnswer, State{AnswerFound: true}, nodeEnd},
		{"answer not found arms fallback", nodeAnswer, State{AnswerFound: false, HasScraped: false}, nodeWebScrape},
		{"answer not found after fallback ends", nodeAnswer, State{AnswerFound: false, HasScraped: true}, nodeEnd},
		{"webscrape back to answer", nodeWebScrape, State{}, nodeAnswer},
		{"unknown node ends", node("bogus"), State{}, nodeEnd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextNode(tt.from, tt.state); got != tt.want {
				t.Errorf("nextNode(%q) = %q, want %q", tt.from, got, tt.want)
			}
		})
	}
}

func dispatchGenerate(prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Red Flag Filter Agent"):
		return `{"redFlags": {
			"vendorMinimumOnly": "no",
			"biasedScope": "no",
			"unrealisticTimelineOrBudget": "no",
			"noStakeholderAccess": "no",
			"missingEvaluationCriteria": "no"
		}}`, nil
	case strings.Contains(prompt, "Strategic Qualification Agent"):
		return "```json\n" + `{"scores": {
			"marketAlignment": 5,
			"winProbability": 5,
			"deliveryCapability": 5,
			"businessJustification": 5
		}, "explanation": {
			"marketAlignment": "Strong fit",
			"winProbability": "High",
			"deliveryCapability": "Proven",
			"businessJustification": "Solid"
		}}` + "\n```", nil
	case strings.Contains(prompt, "Customer Readiness & Maturity"):
		return `{"scores": {
			"stakeholderClarity": 5,
			"decisionMakerAccess": 5,
			"projectBackground": 5
		}, "explanation": {
			"stakeholderClarity": "Clear",
			"decisionMakerAccess": "Direct",
			"projectBackground": "Documented"
		}}`, nil
	default:
		return "Executive summary text.", nil
	}
}

func TestInvokeHappyPath(t *testing.T) {
	provider := &fakeLLM{
		generate: dispatchGenerate,
		stream: func(string) ([]string, error) {
			return []string{
				"The proposal is well scoped. ",
				"Follow-up questions:\n1. What is the budget?\n2. Who are the stakeholders?\n3. What is the timeline?",
			}, nil
		},
	}
	retriever := &fakeRetriever{docs: []store.Document{{Content: "chunk"}}}
	web := &fakeWebSearcher{}

	p := NewPipeline(provider, retriever, web, `{"company":"x"}`, testLogger())
	final := p.Invoke(context.Background(), NewState("RFP text", "Assess this proposal."), nil)

	if final.Action != ActionProceed {
		t.Errorf("Action = %q, want %q", final.Action, ActionProceed)
	}
	if final.TotalFlags != 0 {
		t.Errorf("TotalFlags = %d, want 0", final.TotalFlags)
	}
	if math.Abs(final.StrategicScore-1.75) > 1e-9 {
		t.Errorf("StrategicScore = %v, want 1.75", final.StrategicScore)
	}
	if !final.IsQualified {
		t.Error("IsQualified = false, want true at max score")
	}
	if math.Abs(final.ReadinessScore-1.0) > 1e-9 {
		t.Errorf("ReadinessScore = %v, want 1.0", final.ReadinessScore)
	}
	if final.Summary != "Executive summary text." {
		t.Errorf("Summary = %q", final.Summary)
	}
	if !final.AnswerFound {
		t.Error("AnswerFound = false, want true")
	}
	if len(final.FollowupSuggestions) != 3 {
		t.Errorf("FollowupSuggestions = %v, want 3", final.FollowupSuggestions)
	}
	if final.HasScraped {
		t.Error("HasScraped = true, fallback must not fire when the answer was found")
	}
	if web.calls != 0 {
		t.Errorf("web searcher called %d times, want 0", web.calls)
	}
	if provider.streamCalls != 1 {
		t.Errorf("answer streamed %d times, want 1", provider.streamCalls)
	}
}

func TestInvokeRedFlagAbortSkipsScoring(t *testing.T) {
	provider := &fakeLLM{
		generate: func(prompt string) (string, error) {
			if strings.Contains(prompt, "Red Flag Filter Agent") {
				return `{"redFlags": {
					"vendorMinimumOnly": "yes",
					"biasedScope": "yes",
					"unrealisticTimelineOrBudget": "yes",
					"noStakeholderAccess": "no",
					"missingEvaluationCriteria": "no"
				}}`, nil
			}
			return "Refusal summary.", nil
		},
		stream: func(string) ([]string, error) {
			return []string{NotFoundSentinel}, nil
		},
	}
	web := &fakeWebSearcher{docs: []store.Document{{Content: "web snippet"}}}

	p := NewPipeline(provider, &fakeRetriever{}, web, "", testLogger())
	final := p.Invoke(context.Background(), NewState("risky RFP", "Assess this proposal."), nil)

	if final.Action != ActionDoNotProceed {
		t.Fatalf("Action = %q, want %q", final.Action, ActionDoNotProceed)
	}
	if final.TotalFlags != 3 {
		t.Errorf("TotalFlags = %d, want 3", final.TotalFlags)
	}
	for _, prompt := range provider.generatePrompts {
		if strings.Contains(prompt, "Strategic Qualification Agent") || strings.Contains(prompt, "Customer Readiness & Maturity") {
			t.Errorf("scoring stage ran despite abort: %s", prompt[:60])
		}
	}
	if final.StrategicScore != 0 || final.IsQualified {
		t.Errorf("strategy fields set on abort path: score=%v qualified=%t", final.StrategicScore, final.IsQualified)
	}
	if final.Summary != "Refusal summary." {
		t.Errorf("Summary = %q", final.Summary)
	}
	if !final.HasScraped {
		t.Error("HasScraped = false, fallback pass did not run")
	}
	if web.calls != 1 {
		t.Errorf("web searcher called %d times, want 1", web.calls)
	}
	if len(final.WebScrapedDocuments) != 1 {
		t.Errorf("WebScrapedDocuments = %d, want 1", len(final.WebScrapedDocuments))
	}
}

func TestInvokeWebFallbackFiresAtMostOnce(t *testing.T) {
	provider := &fakeLLM{
		generate: dispatchGenerate,
		stream: func(string) ([]string, error) {
			// Never found, even after the fallback pass.
			return []string{NotFoundSentinel}, nil
		},
	}
	web := &fakeWebSearcher{}

	p := NewPipeline(provider, &fakeRetriever{}, web, "", testLogger())
	final := p.Invoke(context.Background(), NewState("RFP text", "Unanswerable question"), nil)

	if final.AnswerFound {
		t.Error("AnswerFound = true, want false for sentinel output")
	}
	if !final.HasScraped {
		t.Error("HasScraped = false, want true")
	}
	if web.calls != 1 {
		t.Errorf("web searcher called %d times, want exactly 1", web.calls)
	}
	if provider.streamCalls != 2 {
		t.Errorf("answer streamed %d times, want 2 (initial + fallback)", provider.streamCalls)
	}
}

func TestInvokeDegradesNeutralOnGenerationFailure(t *testing.T) {
	provider := &fakeLLM{
		generate: func(string) (string, error) { return "", errors.New("backend down") },
		stream:   func(string) ([]string, error) { return nil, errors.New("backend down") },
	}

	p := NewPipeline(provider, &fakeRetriever{err: errors.New("db down")}, nil, "", testLogger())

	var tokens []string
	final := p.Invoke(context.Background(), NewState("RFP text", "Assess."), func(tok string) {
		tokens = append(tokens, tok)
	})

	if final.RedFlags != UnknownRedFlags() {
		t.Errorf("RedFlags = %+v, want all unknown", final.RedFlags)
	}
	if final.Action != ActionProceed {
		t.Errorf("Action = %q, want %q (failures must not block)", final.Action, ActionProceed)
	}
	if final.StrategicScore != 0 || final.ReadinessScore != 0 {
		t.Errorf("scores = %v/%v, want 0/0", final.StrategicScore, final.ReadinessScore)
	}
	if final.Explanation.MarketAlignment != unableToEvaluate {
		t.Errorf("Explanation.MarketAlignment = %q, want %q", final.Explanation.MarketAlignment, unableToEvaluate)
	}
	if final.Summary != "" {
		t.Errorf("Summary = %q, want empty when generation failed", final.Summary)
	}
	if final.AnswerFound {
		t.Error("AnswerFound = true, want false for empty output")
	}
	// With no web searcher the fallback still marks itself done.
	if !final.HasScraped {
		t.Error("HasScraped = false, want true")
	}
	for _, tok := range tokens {
		if tok != DoneToken {
			t.Errorf("unexpected content token %q from failed streams", tok)
		}
	}
	if len(tokens) != 2 {
		t.Errorf("sink received %d tokens, want 2 done markers (initial + fallback pass)", len(tokens))
	}
}

func TestAnswerQuestionStreamsSentenceChunks(t *testing.T) {
	provider := &fakeLLM{
		stream: func(string) ([]string, error) {
			return []string{"Hel", "lo. ", "Wor", "ld"}, nil
		},
	}
	retriever := &fakeRetriever{docs: []store.Document{{Content: "chunk"}}}

	p := NewPipeline(provider, retriever, &fakeWebSearcher{}, "", testLogger())

	var tokens []string
	final := p.AnswerQuestion(context.Background(), NewState("RFP text", "Say hello."), func(tok string) {
		tokens = append(tokens, tok)
	})

	want := []string{"Hello. ", "World", DoneToken}
	if len(tokens) != len(want) {
		t.Fatalf("sink received %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token[%d] = %q, want %q", i, tokens[i], want[i])
		}
	}
	if final.Generation != "Hello. World" {
		t.Errorf("Generation = %q, want %q", final.Generation, "Hello. World")
	}
	if !final.AnswerFound {
		t.Error("AnswerFound = false, want true")
	}
	if retriever.calls != 1 {
		t.Errorf("retriever called %d times, want 1", retriever.calls)
	}
}

func TestAnswerQuestionSkipsRetrievalWhenDocsSeeded(t *testing.T) {
	provider := &fakeLLM{
		stream: func(string) ([]string, error) { return []string{"Answer."}, nil },
	}
	retriever := &fakeRetriever{}

	p := NewPipeline(provider, retriever, &fakeWebSearcher{}, "", testLogger())

	state := NewState("RFP text", "Question?")
	state.DocResults = []store.Document{{Content: "pre-retrieved"}}

	p.AnswerQuestion(context.Background(), state, nil)

	if retriever.calls != 0 {
		t.Errorf("retriever called %d times, want 0 when DocResults are seeded", retriever.calls)
	}
}
