package agent

import (
	"dealagent-be/pkg/llm"
	"dealagent-be/pkg/store"
)

// Flag is the tri-state verdict of a single red-flag check.
type Flag string

const (
	FlagYes     Flag = "yes"
	FlagNo      Flag = "no"
	FlagUnknown Flag = "unknown"
)

// Action is the pursue/abort decision derived from the red-flag count.
type Action string

const (
	ActionProceed      Action = "proceed"
	ActionDoNotProceed Action = "do not proceed"
)

// RedFlags holds the five fixed risk checks. The struct shape guarantees
// exactly five keys are always present.
type RedFlags struct {
	VendorMinimumOnly           Flag `json:"vendorMinimumOnly"`
	BiasedScope                 Flag `json:"biasedScope"`
	UnrealisticTimelineOrBudget Flag `json:"unrealisticTimelineOrBudget"`
	NoStakeholderAccess         Flag `json:"noStakeholderAccess"`
	MissingEvaluationCriteria   Flag `json:"missingEvaluationCriteria"`
}

// UnknownRedFlags is the neutral value written when evaluation fails.
func UnknownRedFlags() RedFlags {
	return RedFlags{
		VendorMinimumOnly:           FlagUnknown,
		BiasedScope:                 FlagUnknown,
		UnrealisticTimelineOrBudget: FlagUnknown,
		NoStakeholderAccess:         FlagUnknown,
		MissingEvaluationCriteria:   FlagUnknown,
	}
}

func (r RedFlags) all() []Flag {
	return []Flag{
		r.VendorMinimumOnly,
		r.BiasedScope,
		r.UnrealisticTimelineOrBudget,
		r.NoStakeholderAccess,
		r.MissingEvaluationCriteria,
	}
}

// CountYes returns how many of the five flags are "yes".
func (r RedFlags) CountYes() int {
	count := 0
	for _, f := range r.all() {
		if f == FlagYes {
			count++
		}
	}
	return count
}

// normalized coerces any unexpected flag value to "unknown".
func (r RedFlags) normalized() RedFlags {
	norm := func(f Flag) Flag {
		if f == FlagYes || f == FlagNo {
			return f
		}
		return FlagUnknown
	}
	return RedFlags{
		VendorMinimumOnly:           norm(r.VendorMinimumOnly),
		BiasedScope:                 norm(r.BiasedScope),
		UnrealisticTimelineOrBudget: norm(r.UnrealisticTimelineOrBudget),
		NoStakeholderAccess:         norm(r.NoStakeholderAccess),
		MissingEvaluationCriteria:   norm(r.MissingEvaluationCriteria),
	}
}

// StrategyScores are the four 1-5 sub-scores of the strategic evaluation.
type StrategyScores struct {
	MarketAlignment       float64 `json:"marketAlignment"`
	WinProbability        float64 `json:"winProbability"`
	DeliveryCapability    float64 `json:"deliveryCapability"`
	BusinessJustification float64 `json:"businessJustification"`
}

// StrategyExplanation carries the narrative behind each strategy sub-score.
type StrategyExplanation struct {
	MarketAlignment       string `json:"marketAlignment"`
	WinProbability        string `json:"winProbability"`
	DeliveryCapability    string `json:"deliveryCapability"`
	BusinessJustification string `json:"businessJustification"`
}

// ReadinessScores are the three 1-5 sub-scores of the customer-readiness
// evaluation.
type ReadinessScores struct {
	StakeholderClarity  float64 `json:"stakeholderClarity"`
	DecisionMakerAccess float64 `json:"decisionMakerAccess"`
	ProjectBackground   float64 `json:"projectBackground"`
}

// ReadinessExplanation carries the narrative behind each readiness sub-score.
type ReadinessExplanation struct {
	StakeholderClarity  string `json:"stakeholderClarity"`
	DecisionMakerAccess string `json:"decisionMakerAccess"`
	ProjectBackground   string `json:"projectBackground"`
}

// State is the shared pipeline state threaded through every stage of one
// analysis walk. One instance per walk; never shared across walks.
type State struct {
	RawText  string
	Question string

	Messages            []llm.Message
	DocResults          []store.Document
	WebScrapedDocuments []store.Document

	RedFlags   RedFlags
	TotalFlags int
	Action     Action

	StrategicScore float64
	Scores         StrategyScores
	Explanation    StrategyExplanation
	IsQualified    bool

	ReadinessScore       float64
	ReadinessBreakdown   ReadinessScores
	ReadinessExplanation ReadinessExplanation

	HasScraped          bool
	AnswerFound         bool
	Generation          string
	FollowupSuggestions []string

	Summary string
}

// NewState returns the initial state for a walk with every field at its
// documented default.
func NewState(rawText, question string) State {
	return State{
		RawText:  rawText,
		Question: question,
		RedFlags: UnknownRedFlags(),
		Action:   ActionProceed,
	}
}

// Update is a partial state delta produced by one stage. A nil pointer means
// "field untouched". Messages and WebScrapedDocuments are append-only and so
// need no pointer indirection: an empty slice appends nothing.
type Update struct {
	Question *string

	Messages            []llm.Message
	WebScrapedDocuments []store.Document
	DocResults          *[]store.Document

	RedFlags   *RedFlags
	TotalFlags *int
	Action     *Action

	StrategicScore *float64
	Scores         *StrategyScores
	Explanation    *StrategyExplanation
	IsQualified    *bool

	ReadinessScore       *float64
	ReadinessBreakdown   *ReadinessScores
	ReadinessExplanation *ReadinessExplanation

	HasScraped          *bool
	AnswerFound         *bool
	Generation          *string
	FollowupSuggestions *[]string

	Summary *string
}

// Apply merges an update into the state and returns the result. The merge is
// right-biased: a present field wins, an absent field keeps the old value.
// Messages and WebScrapedDocuments concatenate instead.
func (s State) Apply(u Update) State {
	if u.Question != nil {
		s.Question = *u.Question
	}
	if len(u.Messages) > 0 {
		s.Messages = append(s.Messages, u.Messages...)
	}
	if len(u.WebScrapedDocuments) > 0 {
		s.WebScrapedDocuments = append(s.WebScrapedDocuments, u.WebScrapedDocuments...)
	}
	if u.DocResults != nil {
		s.DocResults = *u.DocResults
	}
	if u.RedFlags != nil {
		s.RedFlags = *u.RedFlags
	}
	if u.TotalFlags != nil {
		s.TotalFlags = *u.TotalFlags
	}
	if u.Action != nil {
		s.Action = *u.Action
	}
	if u.StrategicScore != nil {
		s.StrategicScore = *u.StrategicScore
	}
	if u.Scores != nil {
		s.Scores = *u.Scores
	}
	if u.Explanation != nil {
		s.Explanation = *u.Explanation
	}
	if u.IsQualified != nil {
		s.IsQualified = *u.IsQualified
	}
	if u.ReadinessScore != nil {
		s.ReadinessScore = *u.ReadinessScore
	}
	if u.ReadinessBreakdown != nil {
		s.ReadinessBreakdown = *u.ReadinessBreakdown
	}
	if u.ReadinessExplanation != nil {
		s.ReadinessExplanation = *u.ReadinessExplanation
	}
	if u.HasScraped != nil {
		s.HasScraped = *u.HasScraped
	}
	if u.AnswerFound != nil {
		s.AnswerFound = *u.AnswerFound
	}
	if u.Generation != nil {
		s.Generation = *u.Generation
	}
	if u.FollowupSuggestions != nil {
		s.FollowupSuggestions = *u.FollowupSuggestions
	}
	if u.Summary != nil {
		s.Summary = *u.Summary
	}
	return s
}
