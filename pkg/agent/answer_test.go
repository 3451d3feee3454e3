package agent

import (
	"testing"

	"dealagent-be/pkg/store"
)

func TestAnswerFound(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"normal answer", "The budget is $500k as stated in section 3.", true},
		{"empty output", "", false},
		{"whitespace only", "  \n\t ", false},
		{"exact sentinel", NotFoundSentinel, false},
		{"sentinel embedded in chatter", "I looked everywhere. Not found in available context.", false},
		{"sentinel case-insensitive", "not found in available context.", false},
		{"generic ready reply", "Ok. I'm ready to answer your questions.", false},
		{"generic understand reply", "Okay, I understand the task now.", false},
		{"generic question prompt", "What is your question?", false},
		{"answer mentioning context", "According to the web context, the vendor is public.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerFound(tt.output); got != tt.want {
				t.Errorf("answerFound(%q) = %t, want %t", tt.output, got, tt.want)
			}
		})
	}
}

func TestExtractFollowups(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "no label",
			output: "Just an answer with no suggestions.",
			want:   nil,
		},
		{
			name:   "numbered list",
			output: "Answer.\n\nFollow-up questions:\n1. What is the budget?\n2. Who signs off?\n3. When is the deadline?",
			want:   []string{"What is the budget?", "Who signs off?", "When is the deadline?"},
		},
		{
			name:   "capped at three",
			output: "Follow-up questions:\n1. A?\n2. B?\n3. C?\n4. D?\n5. E?",
			want:   []string{"A?", "B?", "C?"},
		},
		{
			name:   "bulleted list",
			output: "Follow-up questions:\n- What is the scope?\n- Who is the sponsor?",
			want:   []string{"What is the scope?", "Who is the sponsor?"},
		},
		{
			name:   "label variants",
			output: "FOLLOWUP QUESTION: What next?",
			want:   []string{"What next?"},
		},
		{
			name:   "drops not-found placeholders",
			output: "Follow-up questions:\n1. Not found in available context.\n2. What is the timeline?",
			want:   []string{"What is the timeline?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractFollowups(tt.output)
			if len(got) != len(tt.want) {
				t.Fatalf("extractFollowups() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("followup[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestJoinContents(t *testing.T) {
	docs := []store.Document{
		{Content: "first"},
		{Content: ""},
		{Content: "second"},
	}

	got := joinContents(docs)
	want := "first\n---\nsecond"
	if got != want {
		t.Errorf("joinContents() = %q, want %q", got, want)
	}

	if got := joinContents(nil); got != "" {
		t.Errorf("joinContents(nil) = %q, want empty", got)
	}
}
