package agent

import (
	"context"
	"log"

	"dealagent-be/pkg/llm"
)

// node names one vertex of the stage graph.
type node string

const (
	nodeRedFlag   node = "redflag"
	nodeStrategy  node = "strategy"
	nodeReadiness node = "readiness"
	nodeSummary   node = "summary"
	nodeAnswer    node = "answer"
	nodeWebScrape node = "webscrape"
	nodeEnd       node = "end"
)

// nextNode evaluates the outgoing edge of n against the committed state. It is
// pure: routing decisions are testable without executing any stage.
func nextNode(n node, s State) node {
	switch n {
	case nodeRedFlag:
		if s.Action == ActionDoNotProceed {
			return nodeSummary
		}
		return nodeStrategy
	case nodeStrategy:
		return nodeReadiness
	case nodeReadiness:
		return nodeSummary
	case nodeSummary:
		return nodeAnswer
	case nodeAnswer:
		if s.AnswerFound {
			return nodeEnd
		}
		if !s.HasScraped {
			return nodeWebScrape
		}
		return nodeEnd
	case nodeWebScrape:
		return nodeAnswer
	default:
		return nodeEnd
	}
}

// maxNodeVisits bounds a walk. The graph's only cycle (answer -> webscrape ->
// answer) is bounded to two answer passes by hasScraped, so a longer walk is a
// routing defect, not a valid execution.
const maxNodeVisits = 8

// Pipeline runs the evaluation stage graph. Clients are injected so tests can
// substitute fakes; one Pipeline is safe for concurrent walks because all
// per-walk data lives in State.
type Pipeline struct {
	llm            llm.LLMProvider
	retriever      Retriever
	web            WebSearcher
	domainMetadata string
	logger         *log.Logger
}

func NewPipeline(provider llm.LLMProvider, retriever Retriever, web WebSearcher, domainMetadata string, logger *log.Logger) *Pipeline {
	return &Pipeline{
		llm:            provider,
		retriever:      retriever,
		web:            web,
		domainMetadata: domainMetadata,
		logger:         logger,
	}
}

// Invoke walks the full graph from the red-flag stage to the terminal node and
// returns the final state. onToken may be nil for non-streaming use. Stages
// absorb their own external-call failures, so the walk always completes; a
// panic escaping a stage is a defect and is deliberately not recovered here.
func (p *Pipeline) Invoke(ctx context.Context, initial State, onToken TokenSink) State {
	return p.walk(ctx, nodeRedFlag, initial, onToken)
}

// AnswerQuestion runs only the question-answering tail of the graph (answer
// stage plus its one-shot web fallback). Chat turns after the initial analysis
// enter here: the evaluation scores already live in the supplied state.
func (p *Pipeline) AnswerQuestion(ctx context.Context, initial State, onToken TokenSink) State {
	return p.walk(ctx, nodeAnswer, initial, onToken)
}

func (p *Pipeline) walk(ctx context.Context, entry node, initial State, onToken TokenSink) State {
	if onToken == nil {
		onToken = func(string) {}
	}

	state := initial
	visits := 0
	for current := entry; current != nodeEnd; current = nextNode(current, state) {
		visits++
		if visits > maxNodeVisits {
			p.logger.Printf("[ERROR] Walk exceeded %d node visits at %q, terminating", maxNodeVisits, current)
			break
		}

		p.logger.Printf("[GRAPH] Entering node %q (visit %d)", current, visits)

		var update Update
		switch current {
		case nodeRedFlag:
			update = p.evaluateRedFlags(ctx, state)
		case nodeStrategy:
			update = p.evaluateStrategy(ctx, state)
		case nodeReadiness:
			update = p.evaluateReadiness(ctx, state)
		case nodeSummary:
			update = p.generateSummary(ctx, state)
		case nodeAnswer:
			update = p.streamAnswer(ctx, state, onToken)
		case nodeWebScrape:
			update = p.scrapeWeb(ctx, state)
		}

		state = state.Apply(update)
	}

	return state
}
