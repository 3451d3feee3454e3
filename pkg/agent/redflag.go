package agent

import (
	"context"
	"encoding/json"
)

const redFlagPrompt = `You are a Red Flag Filter Agent.

Evaluate the following 5 red flags in the given RFP text. For each one, answer "yes" or "no".

Red Flags:
1. Just added to meet vendor minimum
2. Scope favors another vendor
3. Unrealistic timeline or budget
4. No stakeholder access
5. Vague or missing evaluation criteria

Return a JSON like this:
{
  "redFlags": {
    "vendorMinimumOnly": "yes" | "no",
    "biasedScope": "yes" | "no",
    "unrealisticTimelineOrBudget": "yes" | "no",
    "noStakeholderAccess": "yes" | "no",
    "missingEvaluationCriteria": "yes" | "no"
  }
}`

type redFlagResult struct {
	RedFlags RedFlags `json:"redFlags"`
}

// evaluateRedFlags runs the five-point risk rubric over the raw text. The
// flag count and the resulting action are recomputed here rather than read
// from the generation, so the routing invariant cannot be broken by model
// arithmetic. On any failure the stage degrades to all-unknown flags and
// "proceed" so the walk stays non-blocking.
func (p *Pipeline) evaluateRedFlags(ctx context.Context, s State) Update {
	neutral := func() Update {
		flags := UnknownRedFlags()
		total := 0
		action := ActionProceed
		return Update{RedFlags: &flags, TotalFlags: &total, Action: &action}
	}

	prompt := redFlagPrompt + "\n\nRFP TEXT:\n" + s.RawText

	raw, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.logger.Printf("[WARN] Red flag generation failed: %v", err)
		return neutral()
	}

	var parsed redFlagResult
	if err := json.Unmarshal([]byte(cleanJSON(raw)), &parsed); err != nil {
		p.logger.Printf("[WARN] Red flag output unparseable: %v, raw: %s", err, raw)
		return neutral()
	}

	flags := parsed.RedFlags.normalized()
	total := flags.CountYes()
	action := ActionProceed
	if total >= 2 {
		action = ActionDoNotProceed
	}

	p.logger.Printf("[REDFLAG] total=%d action=%q", total, action)

	return Update{RedFlags: &flags, TotalFlags: &total, Action: &action}
}
