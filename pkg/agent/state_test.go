package agent

import (
	"testing"

	"dealagent-be/pkg/llm"
	"dealagent-be/pkg/store"
)

func TestNewStateDefaults(t *testing.T) {
	s := NewState("raw", "question")

	if s.RawText != "raw" || s.Question != "question" {
		t.Errorf("NewState inputs not retained: %q %q", s.RawText, s.Question)
	}
	if s.Action != ActionProceed {
		t.Errorf("Action = %q, want %q", s.Action, ActionProceed)
	}
	if s.RedFlags != UnknownRedFlags() {
		t.Errorf("RedFlags = %+v, want all unknown", s.RedFlags)
	}
	if s.HasScraped || s.AnswerFound || s.IsQualified {
		t.Error("boolean fields must start false")
	}
}

func TestApplyNilPointersKeepOldValues(t *testing.T) {
	s := NewState("raw", "question")
	score := 1.5
	s = s.Apply(Update{StrategicScore: &score})

	// An empty update must be a no-op on every field.
	got := s.Apply(Update{})
	if got.StrategicScore != 1.5 {
		t.Errorf("StrategicScore = %v, want 1.5", got.StrategicScore)
	}
	if got.Question != "question" || got.Action != ActionProceed {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestApplyPresentFieldsWin(t *testing.T) {
	s := NewState("raw", "old question")

	question := "new question"
	action := ActionDoNotProceed
	total := 3
	found := true
	generation := "an answer"
	followups := []string{"q1", "q2"}

	got := s.Apply(Update{
		Question:            &question,
		Action:              &action,
		TotalFlags:          &total,
		AnswerFound:         &found,
		Generation:          &generation,
		FollowupSuggestions: &followups,
	})

	if got.Question != "new question" {
		t.Errorf("Question = %q, want %q", got.Question, "new question")
	}
	if got.Action != ActionDoNotProceed {
		t.Errorf("Action = %q, want %q", got.Action, ActionDoNotProceed)
	}
	if got.TotalFlags != 3 {
		t.Errorf("TotalFlags = %d, want 3", got.TotalFlags)
	}
	if !got.AnswerFound || got.Generation != "an answer" {
		t.Errorf("answer fields not applied: found=%t gen=%q", got.AnswerFound, got.Generation)
	}
	if len(got.FollowupSuggestions) != 2 {
		t.Errorf("FollowupSuggestions = %v, want 2 entries", got.FollowupSuggestions)
	}
}

func TestApplyAppendsMessagesAndWebDocuments(t *testing.T) {
	s := NewState("raw", "question")

	s = s.Apply(Update{
		Messages:            []llm.Message{{Role: "user", Content: "first"}},
		WebScrapedDocuments: []store.Document{{Content: "snippet one"}},
	})
	s = s.Apply(Update{
		Messages:            []llm.Message{{Role: "assistant", Content: "second"}},
		WebScrapedDocuments: []store.Document{{Content: "snippet two"}},
	})

	if len(s.Messages) != 2 {
		t.Fatalf("Messages = %d entries, want 2", len(s.Messages))
	}
	if s.Messages[0].Content != "first" || s.Messages[1].Content != "second" {
		t.Errorf("Messages order broken: %+v", s.Messages)
	}
	if len(s.WebScrapedDocuments) != 2 {
		t.Fatalf("WebScrapedDocuments = %d entries, want 2", len(s.WebScrapedDocuments))
	}
	if s.WebScrapedDocuments[0].Content != "snippet one" {
		t.Errorf("WebScrapedDocuments order broken: %+v", s.WebScrapedDocuments)
	}
}

func TestApplyDocResultsReplaceNotAppend(t *testing.T) {
	s := NewState("raw", "question")

	first := []store.Document{{Content: "a"}, {Content: "b"}}
	second := []store.Document{{Content: "c"}}

	s = s.Apply(Update{DocResults: &first})
	s = s.Apply(Update{DocResults: &second})

	if len(s.DocResults) != 1 || s.DocResults[0].Content != "c" {
		t.Errorf("DocResults = %+v, want single replaced entry", s.DocResults)
	}
}

func TestRedFlagsCountYes(t *testing.T) {
	tests := []struct {
		name  string
		flags RedFlags
		want  int
	}{
		{"all unknown", UnknownRedFlags(), 0},
		{"two yes", RedFlags{VendorMinimumOnly: FlagYes, BiasedScope: FlagNo, UnrealisticTimelineOrBudget: FlagYes}, 2},
		{"all yes", RedFlags{
			VendorMinimumOnly:           FlagYes,
			BiasedScope:                 FlagYes,
			UnrealisticTimelineOrBudget: FlagYes,
			NoStakeholderAccess:         FlagYes,
			MissingEvaluationCriteria:   FlagYes,
		}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.flags.CountYes(); got != tt.want {
				t.Errorf("CountYes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRedFlagsNormalized(t *testing.T) {
	in := RedFlags{
		VendorMinimumOnly:           FlagYes,
		BiasedScope:                 "maybe",
		UnrealisticTimelineOrBudget: FlagNo,
		NoStakeholderAccess:         "",
		MissingEvaluationCriteria:   "YES",
	}

	got := in.normalized()

	if got.VendorMinimumOnly != FlagYes || got.UnrealisticTimelineOrBudget != FlagNo {
		t.Errorf("valid flags altered: %+v", got)
	}
	if got.BiasedScope != FlagUnknown || got.NoStakeholderAccess != FlagUnknown || got.MissingEvaluationCriteria != FlagUnknown {
		t.Errorf("invalid flags not coerced to unknown: %+v", got)
	}
}
