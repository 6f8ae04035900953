package schema

import (
	"encoding/json"
	"fmt"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Validators for model-generated section payloads. Model output is
// untrusted: it is extracted with ExtractJSON, decoded strictly, and
// validated before a section is accepted into the canvas.

// ParseTicketSummary validates a generated ticket summary.
func ParseTicketSummary(data []byte) (*models.TicketSummary, error) {
	var summary models.TicketSummary
	if err := decodeStrict(data, &summary, "ticket_summary"); err != nil {
		return nil, err
	}
	l := &issueList{}
	if summary.Problem == "" {
		l.missing("problem")
	}
	if summary.Solution == "" {
		l.missing("solution")
	}
	if summary.Context == "" {
		l.missing("context")
	}
	if err := l.err("ticket_summary"); err != nil {
		return nil, err
	}
	return &summary, nil
}

// ParseAcceptanceCriteria validates a generated criteria array.
// IDs are assigned positionally by the analyzer afterwards, so the model
// payload needs titles and valid priorities but not IDs.
func ParseAcceptanceCriteria(data []byte) ([]models.AcceptanceCriterion, error) {
	var criteria []models.AcceptanceCriterion
	if err := decodeStrict(data, &criteria, "acceptance_criteria"); err != nil {
		return nil, err
	}
	l := &issueList{}
	if len(criteria) == 0 {
		l.outOfRange("$", "at least one acceptance criterion is required", "0")
	}
	for i, ac := range criteria {
		path := fmt.Sprintf("[%d]", i)
		if ac.Title == "" {
			l.missing(path + ".title")
		}
		if ac.Description == "" {
			l.missing(path + ".description")
		}
		if !ac.Priority.IsValid() {
			l.invalidEnum(path+".priority", string(ac.Priority), "must", "should", "could")
		}
	}
	if err := l.err("acceptance_criteria"); err != nil {
		return nil, err
	}
	return criteria, nil
}

// ParseTestCases validates a generated test case array against the
// requested format. Mixed-format responses are rejected.
func ParseTestCases(data []byte, format models.TestCaseFormat) ([]models.TestCase, error) {
	var cases []models.TestCase
	if err := decodeLenient(data, &cases, "test_cases"); err != nil {
		return nil, err
	}
	l := &issueList{}
	if len(cases) == 0 {
		l.outOfRange("$", "at least one test case is required", "0")
	}
	for i, tc := range cases {
		path := fmt.Sprintf("[%d]", i)
		if tc.Format != format {
			l.invalidEnum(path+".format", string(tc.Format), string(format))
			continue
		}
		if !tc.Priority.IsValid() {
			l.invalidEnum(path+".priority", string(tc.Priority), "high", "medium", "low")
		}
		validateTestCaseVariant(l, path, &tc)
	}
	if err := l.err("test_cases"); err != nil {
		return nil, err
	}
	return cases, nil
}

// ParseConfigurationWarnings validates a generated warnings array.
// An empty array is valid — warnings are optional by design.
func ParseConfigurationWarnings(data []byte) ([]models.ConfigurationWarning, error) {
	var warnings []models.ConfigurationWarning
	if err := decodeStrict(data, &warnings, "configuration_warnings"); err != nil {
		return nil, err
	}
	l := &issueList{}
	for i, w := range warnings {
		path := fmt.Sprintf("[%d]", i)
		if w.Title == "" {
			l.missing(path + ".title")
		}
		if w.Message == "" {
			l.missing(path + ".message")
		}
		if !w.Severity.IsValid() {
			l.invalidEnum(path+".severity", string(w.Severity), "low", "medium", "high")
		}
	}
	if err := l.err("configuration_warnings"); err != nil {
		return nil, err
	}
	return warnings, nil
}

// ParseRegeneratedSections validates a whole-document regeneration
// payload: the four content sections without metadata. Test cases must
// keep the document's format.
func ParseRegeneratedSections(data []byte, format models.TestCaseFormat) (*models.Canvas, error) {
	var payload struct {
		TicketSummary         json.RawMessage `json:"ticket_summary"`
		ConfigurationWarnings json.RawMessage `json:"configuration_warnings"`
		AcceptanceCriteria    json.RawMessage `json:"acceptance_criteria"`
		TestCases             json.RawMessage `json:"test_cases"`
	}
	if err := decodeLenient(data, &payload, "regenerated_canvas"); err != nil {
		return nil, err
	}

	l := &issueList{}
	canvas := &models.Canvas{}

	if len(payload.TicketSummary) == 0 {
		l.missing("ticket_summary")
	} else if summary, err := ParseTicketSummary(payload.TicketSummary); err != nil {
		l.custom("ticket_summary", err.Error())
	} else {
		canvas.TicketSummary = *summary
	}

	if len(payload.AcceptanceCriteria) == 0 {
		l.missing("acceptance_criteria")
	} else if criteria, err := ParseAcceptanceCriteria(payload.AcceptanceCriteria); err != nil {
		l.custom("acceptance_criteria", err.Error())
	} else {
		canvas.AcceptanceCriteria = criteria
	}

	if len(payload.TestCases) == 0 {
		l.missing("test_cases")
	} else if cases, err := ParseTestCases(payload.TestCases, format); err != nil {
		l.custom("test_cases", err.Error())
	} else {
		canvas.TestCases = cases
	}

	if len(payload.ConfigurationWarnings) > 0 {
		if warnings, err := ParseConfigurationWarnings(payload.ConfigurationWarnings); err != nil {
			l.custom("configuration_warnings", err.Error())
		} else {
			canvas.ConfigurationWarnings = warnings
		}
	}

	if err := l.err("regenerated_canvas"); err != nil {
		return nil, err
	}
	return canvas, nil
}

// ParseIntentClassification validates the classifier's structured output.
func ParseIntentClassification(data []byte) (*models.IntentClassification, error) {
	var classification models.IntentClassification
	if err := decodeLenient(data, &classification, "intent_classification"); err != nil {
		return nil, err
	}
	l := &issueList{}
	if !classification.Intent.IsValid() {
		l.invalidEnum("intent", string(classification.Intent),
			"modify_canvas", "provide_information", "ask_clarification", "off_topic", "fallback")
	}
	if classification.Confidence < 0 || classification.Confidence > 1 {
		l.outOfRange("confidence", "must be within [0, 1]",
			fmt.Sprintf("%g", classification.Confidence))
	}
	for i, section := range classification.TargetSections {
		if !section.IsValid() {
			l.invalidEnum(fmt.Sprintf("target_sections[%d]", i), string(section),
				"ticket_summary", "acceptance_criteria", "test_cases", "configuration_warnings", "metadata")
		}
	}
	if err := l.err("intent_classification"); err != nil {
		return nil, err
	}
	return &classification, nil
}

// ParseSuggestion validates a single AI-authored suggestion payload.
func ParseSuggestion(data []byte) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	if err := decodeLenient(data, &suggestion, "suggestion"); err != nil {
		return nil, err
	}
	if err := ValidateSuggestion(&suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// ValidateSuggestion checks enum membership and required fields.
func ValidateSuggestion(suggestion *models.Suggestion) error {
	l := &issueList{}
	if suggestion.Title == "" {
		l.missing("title")
	}
	if suggestion.Description == "" {
		l.missing("description")
	}
	if !suggestion.SuggestionType.IsValid() {
		l.invalidEnum("suggestion_type", string(suggestion.SuggestionType), "edge_case",
			"ui_verification", "functional_test", "clarification_question", "negative_test",
			"performance_test", "security_test", "accessibility_test", "integration_test",
			"data_validation", "coverage_gap", "improvement", "security")
	}
	if !suggestion.Priority.IsValid() {
		l.invalidEnum("priority", string(suggestion.Priority), "high", "medium", "low")
	}
	if suggestion.TargetSection != "" && !suggestion.TargetSection.IsValid() {
		l.invalidEnum("target_section", string(suggestion.TargetSection),
			"ticket_summary", "acceptance_criteria", "test_cases", "configuration_warnings", "metadata")
	}
	if suggestion.EstimatedEffort != "" && !suggestion.EstimatedEffort.IsValid() {
		l.invalidEnum("estimated_effort", string(suggestion.EstimatedEffort), "low", "medium", "high")
	}
	if err := l.err("suggestion"); err != nil {
		return err
	}
	return nil
}
