package suggest

import (
	"fmt"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// commonWords are filtered out before keyword matching so that shared
// stopwords never count as coverage.
var commonWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"and": true, "or": true, "of": true, "to": true, "in": true,
	"on": true, "for": true, "with": true, "should": true, "must": true,
	"be": true, "can": true, "will": true, "when": true, "that": true,
	"this": true, "it": true, "as": true, "by": true, "at": true,
	"from": true, "not": true, "user": true, "works": true,
}

// keywordsOf extracts the meaningful lowercase words from a phrase.
func keywordsOf(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if len(w) < 3 || commonWords[w] {
			continue
		}
		out = append(out, w)
	}
	return out
}

// negativePatterns mark a test case as a negative test even when its
// category says otherwise.
var negativePatterns = []string{"should not", "invalid", "reject", "error", "fail", "denied"}

// edgeCasePatterns mark boundary-condition coverage.
var edgeCasePatterns = []string{"boundary", "maximum", "minimum", "empty", "null", "special character"}

// CoverageGaps finds acceptance criteria and QA categories the test
// cases do not exercise.
func CoverageGaps(canvas *models.Canvas) []models.Suggestion {
	var suggestions []models.Suggestion
	testText := strings.ToLower(canvas.SectionText(models.SectionTestCases))

	for _, ac := range canvas.AcceptanceCriteria {
		keywords := keywordsOf(ac.Title)
		if len(keywords) == 0 || anyContained(testText, keywords) {
			continue
		}
		priority := models.TestPriorityMedium
		if ac.Priority == models.PriorityMust {
			priority = models.TestPriorityHigh
		}
		suggestions = append(suggestions, models.Suggestion{
			SuggestionType:      models.SuggestionCoverageGap,
			Title:               fmt.Sprintf("No test case covers %q", ac.Title),
			Description:         fmt.Sprintf("Acceptance criterion %s is not referenced by any test case.", ac.ID),
			TargetSection:       models.SectionTestCases,
			Priority:            priority,
			Reasoning:           "None of the criterion's keywords appear in the test cases.",
			RelatedRequirements: []string{ac.ID},
			Tags:                keywords,
		})
	}

	for _, category := range canvas.Metadata.QAProfile.ActiveCategories() {
		if categoryCovered(canvas, category) {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			SuggestionType: models.SuggestionCoverageGap,
			Title:          fmt.Sprintf("No test cases for the %s category", category),
			Description:    fmt.Sprintf("The QA profile enables %s coverage but no test case carries that category.", category),
			TargetSection:  models.SectionTestCases,
			Priority:       models.TestPriorityMedium,
			Reasoning:      "An enabled QA category has zero matching test cases.",
			Tags:           []string{string(category)},
		})
	}

	if !hasNegativeTests(canvas, testText) {
		suggestions = append(suggestions, models.Suggestion{
			SuggestionType: models.SuggestionNegativeTest,
			Title:          "Add negative test cases",
			Description:    "No test case exercises failure paths: invalid input, rejected operations, or error states.",
			TargetSection:  models.SectionTestCases,
			Priority:       models.TestPriorityHigh,
			Reasoning:      "Every test case covers the happy path.",
			Tags:           []string{"negative", "error handling"},
		})
	}

	if !anyContained(testText, edgeCasePatterns) {
		suggestions = append(suggestions, models.Suggestion{
			SuggestionType: models.SuggestionEdgeCase,
			Title:          "Add boundary condition coverage",
			Description:    "No test case mentions boundary conditions such as empty, maximum, or minimum values.",
			TargetSection:  models.SectionTestCases,
			Priority:       models.TestPriorityMedium,
			Reasoning:      "Edge-case patterns are absent from every test case.",
			Tags:           []string{"boundary", "edge case"},
		})
	}

	return suggestions
}

func anyContained(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func categoryCovered(canvas *models.Canvas, category models.QACategory) bool {
	for i := range canvas.TestCases {
		if strings.EqualFold(canvas.TestCases[i].Category, string(category)) {
			return true
		}
	}
	return false
}

func hasNegativeTests(canvas *models.Canvas, testText string) bool {
	if categoryCovered(canvas, models.CategoryNegative) {
		return true
	}
	return anyContained(testText, negativePatterns)
}

// vagueTerms make an acceptance criterion unverifiable.
var vagueTerms = []string{
	"appropriate", "reasonable", "adequate", "quick", "fast", "several",
	"some", "many", "properly", "correctly", "user-friendly", "intuitive",
	"acceptable", "good", "nice",
}

// pronounWords are context-free references that weaken a problem statement.
var pronounWords = map[string]bool{
	"it": true, "this": true, "that": true, "they": true, "them": true, "those": true,
}

// ClarificationSuggestions flags vague or inconsistent wording in the
// document.
func ClarificationSuggestions(canvas *models.Canvas) []models.Suggestion {
	var suggestions []models.Suggestion

	for _, ac := range canvas.AcceptanceCriteria {
		lower := strings.ToLower(ac.Description)
		for _, term := range vagueTerms {
			if containsWord(lower, term) {
				suggestions = append(suggestions, models.Suggestion{
					SuggestionType:      models.SuggestionClarificationQuestion,
					Title:               fmt.Sprintf("Criterion %s uses the vague term %q", ac.ID, term),
					Description:         fmt.Sprintf("Replace %q with a measurable threshold so the criterion can be verified.", term),
					TargetSection:       models.SectionAcceptanceCriteria,
					Priority:            models.TestPriorityMedium,
					Reasoning:           "Vague qualifiers cannot be checked by a tester.",
					RelatedRequirements: []string{ac.ID},
					Tags:                []string{"vague", term},
				})
				break
			}
		}
	}

	if s := problemStatementIssue(canvas); s != nil {
		suggestions = append(suggestions, *s)
	}
	if s := problemSolutionDisconnect(canvas); s != nil {
		suggestions = append(suggestions, *s)
	}
	suggestions = append(suggestions, priorityInconsistencies(canvas)...)

	return suggestions
}

func problemStatementIssue(canvas *models.Canvas) *models.Suggestion {
	words := strings.Fields(strings.ToLower(canvas.TicketSummary.Problem))
	if len(words) == 0 {
		return nil
	}
	pronouns := 0
	for _, w := range words {
		if pronounWords[strings.Trim(w, ".,!?")] {
			pronouns++
		}
	}
	short := len(words) < 5
	pronounHeavy := pronouns*3 >= len(words)
	if !short && !pronounHeavy {
		return nil
	}
	reason := "The problem statement is too short to anchor testing."
	if pronounHeavy {
		reason = "The problem statement leans on pronouns without clear referents."
	}
	return &models.Suggestion{
		SuggestionType: models.SuggestionClarificationQuestion,
		Title:          "Strengthen the problem statement",
		Description:    "Expand the summary's problem statement with concrete subjects and observable behavior.",
		TargetSection:  models.SectionTicketSummary,
		Priority:       models.TestPriorityHigh,
		Reasoning:      reason,
		Tags:           []string{"summary", "clarity"},
	}
}

func problemSolutionDisconnect(canvas *models.Canvas) *models.Suggestion {
	problem := keywordsOf(canvas.TicketSummary.Problem)
	solution := keywordsOf(canvas.TicketSummary.Solution)
	smaller := min(len(problem), len(solution))
	if smaller == 0 {
		return nil
	}

	solutionSet := map[string]bool{}
	for _, w := range solution {
		solutionSet[w] = true
	}
	overlap := 0
	for _, w := range problem {
		if solutionSet[w] {
			overlap++
		}
	}
	if overlap*10 >= smaller*3 {
		return nil
	}
	return &models.Suggestion{
		SuggestionType: models.SuggestionClarificationQuestion,
		Title:          "Problem and solution may be disconnected",
		Description:    "The summary's problem and solution share almost no vocabulary; confirm the solution addresses the stated problem.",
		TargetSection:  models.SectionTicketSummary,
		Priority:       models.TestPriorityMedium,
		Reasoning:      "Keyword overlap between problem and solution is below 30%.",
		Tags:           []string{"summary", "consistency"},
	}
}

func priorityInconsistencies(canvas *models.Canvas) []models.Suggestion {
	var suggestions []models.Suggestion
	criteria := canvas.AcceptanceCriteria

	for i := 0; i < len(criteria); i++ {
		for j := i + 1; j < len(criteria); j++ {
			if criteria[i].Priority == criteria[j].Priority {
				continue
			}
			if shared := sharedKeyword(criteria[i].Title, criteria[j].Title); shared != "" {
				suggestions = append(suggestions, models.Suggestion{
					SuggestionType:      models.SuggestionClarificationQuestion,
					Title:               fmt.Sprintf("Criteria %s and %s rank %q differently", criteria[i].ID, criteria[j].ID, shared),
					Description:         "Related criteria carry different priorities; confirm the ranking is intentional.",
					TargetSection:       models.SectionAcceptanceCriteria,
					Priority:            models.TestPriorityLow,
					Reasoning:           "Criteria sharing a keyword usually share a priority.",
					RelatedRequirements: []string{criteria[i].ID, criteria[j].ID},
					Tags:                []string{shared, "priority"},
				})
			}
		}
	}
	return suggestions
}

func sharedKeyword(a, b string) string {
	bSet := map[string]bool{}
	for _, w := range keywordsOf(b) {
		bSet[w] = true
	}
	for _, w := range keywordsOf(a) {
		if bSet[w] {
			return w
		}
	}
	return ""
}

func containsWord(lower, w string) bool {
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
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '-'
}
