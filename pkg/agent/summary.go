package agent

import (
	"context"
	"fmt"
	"strings"
)

// Verdict tiers for the combined score, expressed as a percentage of the
// maximum combined score (1.75 strategic + 1.0 readiness).
const (
	maxCombinedScore = maxStrategicScore + 1.0
	proceedCutoffPct = 75.0
	cautionCutoffPct = 55.0
)

var flagDescriptions = map[string]string{
	"vendorMinimumOnly":           "Only minimum vendor requirements provided",
	"biasedScope":                 "Scope appears biased toward a specific vendor",
	"unrealisticTimelineOrBudget": "Timeline or budget seems unrealistic",
	"noStakeholderAccess":         "No access to key stakeholders provided",
	"missingEvaluationCriteria":   "Missing or vague evaluation criteria",
}

// triggeredFlagKeys lists the JSON keys of flags currently set to "yes", in
// rubric order.
func triggeredFlagKeys(r RedFlags) []string {
	keys := []string{
		"vendorMinimumOnly",
		"biasedScope",
		"unrealisticTimelineOrBudget",
		"noStakeholderAccess",
		"missingEvaluationCriteria",
	}
	var out []string
	for i, f := range r.all() {
		if f == FlagYes {
			out = append(out, keys[i])
		}
	}
	return out
}

// generateSummary produces the executive summary. When the red-flag stage
// blocked the pursuit it uses a refusal narrative; otherwise the verdict label
// is chosen by thresholding the combined score. Generation failures leave the
// summary untouched.
func (p *Pipeline) generateSummary(ctx context.Context, s State) Update {
	var prompt string
	if s.Action == ActionDoNotProceed {
		prompt = refusalSummaryPrompt(s)
	} else {
		prompt = verdictSummaryPrompt(s)
	}

	raw, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.logger.Printf("[WARN] Summary generation failed: %v", err)
		return Update{}
	}

	summary := strings.TrimSpace(raw)
	p.logger.Printf("[SUMMARY] %d chars, action=%q", len(summary), s.Action)

	return Update{Summary: &summary}
}

func refusalSummaryPrompt(s State) string {
	var triggered strings.Builder
	for _, key := range triggeredFlagKeys(s.RedFlags) {
		fmt.Fprintf(&triggered, "- %s\n", flagDescriptions[key])
	}

	return strings.TrimSpace(fmt.Sprintf(`You are a risk analyst.

Summarize why this RFP should not be pursued.

---
Verdict: Do not proceed - %d red flags detected.

Red Flags Triggered:
%s
Justification:
These issues introduce unacceptable risk to pursuit or delivery.

Recommendation:
- Escalate to legal or compliance if needed.
- Mitigate risks only if remediable.
- Proceed: Not advised.
---`, s.TotalFlags, triggered.String()))
}

func verdictSummaryPrompt(s State) string {
	percent := (s.StrategicScore + s.ReadinessScore) / maxCombinedScore * 100

	var verdict string
	switch {
	case percent >= proceedCutoffPct:
		verdict = "Proceed"
	case percent >= cautionCutoffPct:
		verdict = "Proceed with caution"
	default:
		verdict = "Do not proceed"
	}

	triggered := "None"
	if keys := triggeredFlagKeys(s.RedFlags); len(keys) > 0 {
		triggered = strings.Join(keys, ", ")
	}

	return strings.TrimSpace(fmt.Sprintf(`You are a strategic pre-sales analyst.

Generate a pursuit recommendation using strategic evaluation, customer readiness, and red flags.

---
Verdict: %s
Overall Score: %.1f%% (out of 100%%)

Red Flags:
Total Flags: %d
Flags Triggered: %s

Strategic Evaluation:
- Market Alignment: %s
- Win Probability: %s
- Delivery Capability: %s
- Business Justification: %s

Customer Readiness:
- Stakeholder Clarity: %s
- Decision Maker Access: %s
- Project Background: %s

---
Recommendation:
- Escalate: <Specify if critical concerns exist>
- Mitigate: <List any risks and solutions>
- Proceed: <Highlight strengths or alignment>`,
		verdict, percent,
		s.TotalFlags, triggered,
		s.Explanation.MarketAlignment,
		s.Explanation.WinProbability,
		s.Explanation.DeliveryCapability,
		s.Explanation.BusinessJustification,
		s.ReadinessExplanation.StakeholderClarity,
		s.ReadinessExplanation.DecisionMakerAccess,
		s.ReadinessExplanation.ProjectBackground))
}
