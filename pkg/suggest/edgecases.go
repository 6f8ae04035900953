package suggest

import (
	"github.com/qa-canvas/canvasd/pkg/models"
)

// Content-signal lexicons for conditional edge-case suggestions.
var (
	inputKeywords    = []string{"input", "form", "field", "enter", "submit", "upload", "text"}
	statefulKeywords = []string{"save", "update", "delete", "create", "state", "session", "draft"}
	authKeywords     = []string{"login", "auth", "password", "permission", "token", "credential"}
	mobileKeywords   = []string{"mobile", "ios", "android", "tablet", "touch", "responsive"}
)

// EdgeCaseSuggestions proposes boundary scenarios conditioned on what
// the document is actually about.
func EdgeCaseSuggestions(canvas *models.Canvas) []models.Suggestion {
	text := canvas.FullText()
	var suggestions []models.Suggestion

	if anyContained(text, inputKeywords) {
		suggestions = append(suggestions,
			edgeCase("Empty input handling", "Submit the flow with every input left empty and verify the validation messages.", "input"),
			edgeCase("Maximum-length input", "Fill inputs to their maximum allowed length and one character beyond it.", "input"),
			dataValidation("Special characters in input", "Enter quotes, angle brackets, emoji, and multi-byte characters in free-text fields.", "input"))
	}
	if anyContained(text, statefulKeywords) {
		suggestions = append(suggestions,
			edgeCase("Concurrent operations", "Run the same operation from two sessions at once and verify the final state.", "state"),
			edgeCase("Interrupted operation", "Interrupt the operation mid-flight (close the tab, drop the connection) and verify recovery.", "state"))
	}
	if anyContained(text, authKeywords) {
		suggestions = append(suggestions,
			securityTest("Session timeout during the flow", "Let the session expire mid-flow and verify the user is re-authenticated without data loss.", "auth"),
			securityTest("Permission boundary", "Attempt the operation with a user lacking the required permission.", "auth"))
	}
	if anyContained(text, mobileKeywords) {
		suggestions = append(suggestions,
			edgeCase("Orientation change mid-flow", "Rotate the device during the flow and verify the state survives.", "mobile"),
			edgeCase("Slow network behavior", "Throttle the connection to 3G speeds and verify loading states and timeouts.", "mobile"))
	}

	return suggestions
}

func edgeCase(title, description, tag string) models.Suggestion {
	return models.Suggestion{
		SuggestionType: models.SuggestionEdgeCase,
		Title:          title,
		Description:    description,
		TargetSection:  models.SectionTestCases,
		Priority:       models.TestPriorityMedium,
		Reasoning:      "The document's content signals this boundary scenario.",
		Tags:           []string{tag, "edge case"},
	}
}

func dataValidation(title, description, tag string) models.Suggestion {
	s := edgeCase(title, description, tag)
	s.SuggestionType = models.SuggestionDataValidation
	return s
}

func securityTest(title, description, tag string) models.Suggestion {
	s := edgeCase(title, description, tag)
	s.SuggestionType = models.SuggestionSecurityTest
	return s
}

// perspectiveSeeds maps each QA category to its canonical review
// perspectives.
var perspectiveSeeds = map[models.QACategory][]models.Suggestion{
	models.CategoryFunctional: {
		perspective(models.SuggestionFunctionalTest, "State persistence", "Verify entered data survives a page reload or app restart."),
	},
	models.CategoryUI: {
		perspective(models.SuggestionUIVerification, "Visual consistency", "Compare the changed screens against the design system for spacing, fonts, and colors."),
	},
	models.CategoryUX: {
		perspective(models.SuggestionImprovement, "Task completion flow", "Walk the primary user journey end to end and note every point of friction."),
	},
	models.CategoryNegative: {
		perspective(models.SuggestionNegativeTest, "Invalid transitions", "Drive the feature through disallowed state transitions and verify each is rejected."),
	},
	models.CategoryAPI: {
		perspective(models.SuggestionIntegrationTest, "API contract check", "Exercise the endpoint with missing, extra, and wrongly-typed fields."),
	},
	models.CategoryDatabase: {
		perspective(models.SuggestionDataValidation, "Data integrity", "Verify constraints and cascades after the operation completes and after it fails midway."),
	},
	models.CategoryPerformance: {
		perspective(models.SuggestionPerformanceTest, "Load-time measurement", "Measure the operation under realistic data volume and compare against the baseline."),
	},
	models.CategorySecurity: {
		perspective(models.SuggestionSecurityTest, "Input sanitization", "Probe every input with injection payloads and verify output encoding."),
	},
	models.CategoryMobile: {
		perspective(models.SuggestionUIVerification, "Small-screen layout", "Verify the flow on the smallest supported viewport."),
	},
	models.CategoryAccessibility: {
		perspective(models.SuggestionAccessibilityTest, "Keyboard navigation", "Complete the flow using only the keyboard and verify focus order and visibility."),
		perspective(models.SuggestionAccessibilityTest, "Screen reader labels", "Verify every interactive element announces a meaningful label."),
	},
}

func perspective(t models.SuggestionType, title, description string) models.Suggestion {
	return models.Suggestion{
		SuggestionType: t,
		Title:          title,
		Description:    description,
		TargetSection:  models.SectionTestCases,
		Priority:       models.TestPriorityMedium,
		Reasoning:      "Seeded by an enabled QA category.",
		Tags:           []string{"perspective"},
	}
}

// PerspectiveSuggestions seeds review perspectives from the enabled QA
// categories.
func PerspectiveSuggestions(profile *models.QAProfile) []models.Suggestion {
	var suggestions []models.Suggestion
	for _, category := range profile.ActiveCategories() {
		for _, seed := range perspectiveSeeds[category] {
			seed.Tags = append([]string{string(category)}, seed.Tags...)
			suggestions = append(suggestions, seed)
		}
	}
	return suggestions
}
