package agent

import (
	"context"
	"encoding/json"
)

const readinessPrompt = `You are a deal analyst.

Evaluate the following RFP text on the "Customer Readiness & Maturity" criteria.

Rate each criterion from 1-5.

You must return this JSON format:
{
  "scores": {
    "stakeholderClarity": number,
    "decisionMakerAccess": number,
    "projectBackground": number
  },
  "explanation": {
    "stakeholderClarity": string,
    "decisionMakerAccess": string,
    "projectBackground": string
  }
}`

type readinessResult struct {
	Scores      ReadinessScores      `json:"scores"`
	Explanation ReadinessExplanation `json:"explanation"`
}

// evaluateReadiness scores customer readiness. The aggregate is the mean of
// the three 1-5 sub-scores normalized to [0, 1], recomputed locally.
func (p *Pipeline) evaluateReadiness(ctx context.Context, s State) Update {
	neutral := func() Update {
		score := 0.0
		breakdown := ReadinessScores{}
		explanation := ReadinessExplanation{}
		return Update{
			ReadinessScore:       &score,
			ReadinessBreakdown:   &breakdown,
			ReadinessExplanation: &explanation,
		}
	}

	prompt := readinessPrompt + "\n\nRFP TEXT:\n" + s.RawText

	raw, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.logger.Printf("[WARN] Readiness generation failed: %v", err)
		return neutral()
	}

	var parsed readinessResult
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
		p.logger.Printf("[WARN] Readiness output unparseable: %v, raw: %s", err, raw)
		return neutral()
	}

	sum := parsed.Scores.StakeholderClarity +
		parsed.Scores.DecisionMakerAccess +
		parsed.Scores.ProjectBackground
	score := clamp((sum/3)/5, 0, 1)

	p.logger.Printf("[READINESS] score=%.2f", score)

	return Update{
		ReadinessScore:       &score,
		ReadinessBreakdown:   &parsed.Scores,
		ReadinessExplanation: &parsed.Explanation,
	}
}
