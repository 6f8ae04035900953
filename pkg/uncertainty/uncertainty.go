// Package uncertainty documents the assumptions behind AI-generated
// content and inspects model responses for hedging. It backs the
// try-verify-feedback pattern: generators run their primary pipeline,
// attach detected assumptions to successful results, and degrade to
// fallbacks instead of failing outright.
package uncertainty

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Assumption is one documented gap filled with a default.
type Assumption struct {
	Kind         string `json:"kind"`
	Description  string `json:"description"`
	AssumedValue string `json:"assumed_value,omitempty"`
}

// vagueVerbs flag requests that name a direction but not a target.
var vagueVerbs = []string{"improve", "enhance", "better", "fix", "update"}

// DetectAssumptions applies the assumption rules to a profile and the
// free-text request accompanying it.
func DetectAssumptions(profile *models.QAProfile, requestText string) []Assumption {
	var assumptions []Assumption

	if profile != nil && profile.TestCaseFormat == "" {
		assumptions = append(assumptions, Assumption{
			Kind:         "missing_format",
			Description:  "No test case format was specified in the QA profile.",
			AssumedValue: string(models.FormatGherkin),
		})
	}

	lower := strings.ToLower(requestText)
	for _, verb := range vagueVerbs {
		if ContainsWord(lower, verb) {
			assumptions = append(assumptions, Assumption{
				Kind:        "ambiguous_request",
				Description: fmt.Sprintf("The request says %q without naming what to change.", verb),
			})
			break
		}
	}

	if strings.Contains(lower, "comprehensive") && strings.Contains(lower, "simple") {
		assumptions = append(assumptions, Assumption{
			Kind:        "conflicting_request",
			Description: "The request asks for both comprehensive and simple output.",
		})
	}

	return assumptions
}

// Warnings converts assumptions into canvas configuration warnings.
func Warnings(assumptions []Assumption) []models.ConfigurationWarning {
	warnings := make([]models.ConfigurationWarning, 0, len(assumptions))
	for _, a := range assumptions {
		w := models.ConfigurationWarning{
			Type:     a.Kind,
			Title:    "Assumption made during generation",
			Message:  a.Description,
			Severity: models.SeverityLow,
		}
		if a.AssumedValue != "" {
			w.Recommendation = fmt.Sprintf("Confirm that %q is the intended value.", a.AssumedValue)
		}
		if a.Kind == "conflicting_request" {
			w.Severity = models.SeverityMedium
			w.Recommendation = "Clarify which of the conflicting goals takes precedence."
		}
		warnings = append(warnings, w)
	}
	return warnings
}

// ClarifyingQuestions turns assumptions into questions worth asking the
// user on the next turn.
func ClarifyingQuestions(assumptions []Assumption) []string {
	var questions []string
	for _, a := range assumptions {
		switch a.Kind {
		case "missing_format":
			questions = append(questions, "Which test case format should be used: gherkin, steps, or table?")
		case "ambiguous_request":
			questions = append(questions, "Which section or entry should the change apply to?")
		case "conflicting_request":
			questions = append(questions, "Should the output favor completeness or brevity?")
		}
	}
	return questions
}

// hedgePhrases mark low-confidence model output.
var hedgePhrases = []string{
	"i'm not sure", "i am not sure", "maybe", "possibly",
	"it's unclear", "it is unclear", "hard to say", "no estoy seguro",
}

// minConfidentLength is the response length below which brevity itself
// counts as an uncertainty indicator.
const minConfidentLength = 20

// Signal is the verdict of a hedging scan over a model response.
type Signal struct {
	Uncertain       bool     `json:"uncertain"`
	ConfidenceScore float64  `json:"confidence_score"`
	Indicators      []string `json:"indicators"`
}

// Inspect scans response text for hedge phrases, stacked question
// marks, and extreme brevity.
func Inspect(text string) Signal {
	lower := strings.ToLower(text)
	var indicators []string

	for _, phrase := range hedgePhrases {
		if strings.Contains(lower, phrase) {
			indicators = append(indicators, fmt.Sprintf("hedge phrase %q", phrase))
		}
	}
	if strings.Count(text, "?") >= 3 {
		indicators = append(indicators, "multiple question marks")
	}
	if len(strings.TrimSpace(text)) < minConfidentLength {
		indicators = append(indicators, "response is unusually short")
	}

	score := 1.0 - 0.25*float64(len(indicators))
	if score < 0 {
		score = 0
	}
	return Signal{
		Uncertain:       len(indicators) > 0,
		ConfidenceScore: score,
		Indicators:      indicators,
	}
}

// PartialResult describes which sections a degraded generation managed
// to complete.
type PartialResult struct {
	CompletedSections []models.CanvasSection `json:"completed_sections"`
	FailedSections    []models.CanvasSection `json:"failed_sections"`
}

// NewPartialResult orders both slices canonically.
func NewPartialResult(completed, failed []models.CanvasSection) *PartialResult {
	return &PartialResult{
		CompletedSections: canonical(completed),
		FailedSections:    canonical(failed),
	}
}

func canonical(sections []models.CanvasSection) []models.CanvasSection {
	set := make(map[models.CanvasSection]bool, len(sections))
	for _, s := range sections {
		set[s] = true
	}
	out := make([]models.CanvasSection, 0, len(set))
	for _, s := range models.AllCanvasSections {
		if set[s] {
			out = append(out, s)
		}
	}
	return out
}

// Guarded runs a primary generation and falls back on failure instead
// of propagating the error. The returned bool reports degradation.
func Guarded[T any](ctx context.Context, operation string, primary func(context.Context) (T, error), fallback func() T) (T, bool) {
	value, err := primary(ctx)
	if err == nil {
		return value, false
	}
	slog.Warn("Generation degraded to fallback",
		"operation", operation,
		"error", err)
	return fallback(), true
}

// ContainsWord reports whether lower contains w as a whole word.
// Callers are expected to pass already-lowercased input.
func ContainsWord(lower, w string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
