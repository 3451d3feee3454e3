package agent

import (
	"strings"
	"testing"
)

func TestVerdictSummaryPromptTiers(t *testing.T) {
	tests := []struct {
		name        string
		strategic   float64
		readiness   float64
		wantVerdict string
	}{
		{"top scores proceed", 1.75, 1.0, "Verdict: Proceed\n"},
		{"mid scores proceed with caution", 1.2, 0.5, "Verdict: Proceed with caution\n"},
		{"low scores do not proceed", 1.0, 0.2, "Verdict: Do not proceed\n"},
		{"proceed boundary", 1.75, 0.3125, "Verdict: Proceed\n"}, // exactly 75%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState("raw", "q")
			s.StrategicScore = tt.strategic
			s.ReadinessScore = tt.readiness

			prompt := verdictSummaryPrompt(s)
			if !strings.Contains(prompt, tt.wantVerdict) {
				t.Errorf("prompt verdict line missing %q:\n%s", tt.wantVerdict, prompt[:200])
			}
		})
	}
}

func TestVerdictSummaryPromptListsTriggeredFlags(t *testing.T) {
	s := NewState("raw", "q")
	s.RedFlags.BiasedScope = FlagYes
	s.RedFlags.NoStakeholderAccess = FlagYes

	prompt := verdictSummaryPrompt(s)
	if !strings.Contains(prompt, "biasedScope, noStakeholderAccess") {
		t.Errorf("triggered flags not listed in rubric order:\n%s", prompt)
	}
}

func TestVerdictSummaryPromptNoFlags(t *testing.T) {
	prompt := verdictSummaryPrompt(NewState("raw", "q"))
	if !strings.Contains(prompt, "Flags Triggered: None") {
		t.Error("no-flag case must render as None")
	}
}

func TestRefusalSummaryPromptDescribesFlags(t *testing.T) {
	s := NewState("raw", "q")
	s.Action = ActionDoNotProceed
	s.TotalFlags = 2
	s.RedFlags.UnrealisticTimelineOrBudget = FlagYes
	s.RedFlags.MissingEvaluationCriteria = FlagYes

	prompt := refusalSummaryPrompt(s)

	if !strings.Contains(prompt, "Do not proceed - 2 red flags detected.") {
		t.Errorf("flag count missing from refusal prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "- Timeline or budget seems unrealistic") {
		t.Error("triggered flag description missing")
	}
	if !strings.Contains(prompt, "- Missing or vague evaluation criteria") {
		t.Error("triggered flag description missing")
	}
	if strings.Contains(prompt, "Scope appears biased") {
		t.Error("untriggered flag must not be listed")
	}
}
