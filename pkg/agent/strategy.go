package agent

import (
	"context"
	"encoding/json"
)

const strategyPrompt = `You are a Strategic Qualification Agent.

Your task is to assess the strategic value of an RFP by evaluating 4 criteria using the text of the RFP and the company's metadata.

The 4 weighted criteria are:

1. Market Alignment - 10%
2. Win Probability - 10%
3. Delivery Capability - 10%
4. Business Justification - 5%

Rate each from 1-5 (1 = Poor, 5 = Excellent).

Return this structured JSON:
{
  "scores": {
    "marketAlignment": number,
    "winProbability": number,
    "deliveryCapability": number,
    "businessJustification": number
  },
  "explanation": {
    "marketAlignment": string,
    "winProbability": string,
    "deliveryCapability": string,
    "businessJustification": string
  }
}`

// Strategy sub-score weights. Max weighted sum is 1.75 with all four at 5.
const (
	weightMarketAlignment       = 0.10
	weightWinProbability        = 0.10
	weightDeliveryCapability    = 0.10
	weightBusinessJustification = 0.05

	maxStrategicScore      = 1.75
	qualificationThreshold = 1.2
)

type strategyResult struct {
	Scores      StrategyScores      `json:"scores"`
	Explanation StrategyExplanation `json:"explanation"`
}

const unableToEvaluate = "Unable to evaluate."

// evaluateStrategy scores the four strategic criteria. The weighted total and
// the qualification verdict are recomputed from the sub-scores instead of
// being read back from the generation.
func (p *Pipeline) evaluateStrategy(ctx context.Context, s State) Update {
	neutral := func() Update {
		score := 0.0
		qualified := false
		scores := StrategyScores{}
		explanation := StrategyExplanation{
			MarketAlignment:       unableToEvaluate,
			WinProbability:        unableToEvaluate,
			DeliveryCapability:    unableToEvaluate,
			BusinessJustification: unableToEvaluate,
		}
		return Update{
			StrategicScore: &score,
			Scores:         &scores,
			Explanation:    &explanation,
			IsQualified:    &qualified,
		}
	}

	prompt := strategyPrompt + "\n\nRFP TEXT:\n" + s.RawText + "\n\nDOMAIN METADATA:\n" + p.domainMetadata

	raw, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.logger.Printf("[WARN] Strategy generation failed: %v", err)
		return neutral()
	}

	var parsed strategyResult
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
		p.logger.Printf("[WARN] Strategy output unparseable: %v, raw: %s", err, raw)
		return neutral()
	}

	score := clamp(
		parsed.Scores.MarketAlignment*weightMarketAlignment+
			parsed.Scores.WinProbability*weightWinProbability+
			parsed.Scores.DeliveryCapability*weightDeliveryCapability+
			parsed.Scores.BusinessJustification*weightBusinessJustification,
		0, maxStrategicScore)
	qualified := score >= qualificationThreshold

	p.logger.Printf("[STRATEGY] score=%.2f qualified=%t", score, qualified)

	return Update{
		StrategicScore: &score,
		Scores:         &parsed.Scores,
		Explanation:    &parsed.Explanation,
		IsQualified:    &qualified,
	}
}
