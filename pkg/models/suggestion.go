package models

// SuggestionType is the closed set of improvement proposal categories.
type SuggestionType string

const (
	SuggestionEdgeCase              SuggestionType = "edge_case"
	SuggestionUIVerification        SuggestionType = "ui_verification"
	SuggestionFunctionalTest        SuggestionType = "functional_test"
	SuggestionClarificationQuestion SuggestionType = "clarification_question"
	SuggestionNegativeTest          SuggestionType = "negative_test"
	SuggestionPerformanceTest       SuggestionType = "performance_test"
	SuggestionSecurityTest          SuggestionType = "security_test"
	SuggestionAccessibilityTest     SuggestionType = "accessibility_test"
	SuggestionIntegrationTest       SuggestionType = "integration_test"
	SuggestionDataValidation        SuggestionType = "data_validation"
	SuggestionCoverageGap           SuggestionType = "coverage_gap"
	SuggestionImprovement           SuggestionType = "improvement"
	SuggestionSecurity              SuggestionType = "security"
)

// AllSuggestionTypes lists suggestion types in canonical order.
var AllSuggestionTypes = []SuggestionType{
	SuggestionEdgeCase,
	SuggestionUIVerification,
	SuggestionFunctionalTest,
	SuggestionClarificationQuestion,
	SuggestionNegativeTest,
	SuggestionPerformanceTest,
	SuggestionSecurityTest,
	SuggestionAccessibilityTest,
	SuggestionIntegrationTest,
	SuggestionDataValidation,
	SuggestionCoverageGap,
	SuggestionImprovement,
	SuggestionSecurity,
}

// IsValid checks if the suggestion type is valid
func (t SuggestionType) IsValid() bool {
	for _, known := range AllSuggestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// EffortLevel estimates implementation effort for a suggestion.
type EffortLevel string

const (
	EffortLow    EffortLevel = "low"
	EffortMedium EffortLevel = "medium"
	EffortHigh   EffortLevel = "high"
)

// IsValid checks if the effort level is valid
func (e EffortLevel) IsValid() bool {
	return e == EffortLow || e == EffortMedium || e == EffortHigh
}

// Suggestion is a structured improvement proposal over the canvas.
type Suggestion struct {
	ID                  string           `json:"id"`
	SuggestionType      SuggestionType   `json:"suggestion_type"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	TargetSection       CanvasSection    `json:"target_section,omitempty"`
	Priority            TestCasePriority `json:"priority"`
	Reasoning           string           `json:"reasoning"`
	ImplementationHint  string           `json:"implementation_hint,omitempty"`
	EstimatedEffort     EffortLevel      `json:"estimated_effort,omitempty"`
	RelatedRequirements []string         `json:"related_requirements"`
	Tags                []string         `json:"tags"`
}
