package suggest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
)

type fakeGenerator struct {
	text    string
	tools   []llm.ToolCall
	err     error
	calls   int
	lastReq *llm.Request
}

func (f *fakeGenerator) GenerateText(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text, ToolCalls: f.tools, Provider: "anthropic", Model: "claude-sonnet-4-5"}, nil
}

func gherkinCase(id, scenario, category string, lines ...string) models.TestCase {
	return models.TestCase{
		ID:       id,
		Format:   models.FormatGherkin,
		Category: category,
		Priority: models.TestPriorityHigh,
		Gherkin: &models.GherkinTestCase{
			Scenario: scenario,
			Given:    lines,
			When:     []string{"the user acts"},
			Then:     []string{"the outcome is verified"},
		},
	}
}

func suggestCanvas() *models.Canvas {
	return &models.Canvas{
		TicketSummary: models.TicketSummary{
			Problem:  "Login button unresponsive on mobile Safari",
			Solution: "Attach touch handlers to the login button",
			Context:  "Affects the mobile web login form",
		},
		AcceptanceCriteria: []models.AcceptanceCriterion{
			{ID: "ac-1", Title: "Login succeeds on mobile", Description: "Tap login on Safari and reach the dashboard", Priority: models.PriorityMust},
			{ID: "ac-2", Title: "Analytics events recorded", Description: "Login emits appropriate analytics events", Priority: models.PriorityShould},
		},
		TestCases: []models.TestCase{
			gherkinCase("tc-1", "Login succeeds on mobile Safari", "functional", "a mobile device"),
		},
		Metadata: models.CanvasMetadata{
			TicketID: "TEST-123",
			QAProfile: models.QAProfile{
				TestCaseFormat: models.FormatGherkin,
				QACategories: map[models.QACategory]bool{
					models.CategoryFunctional: true,
					models.CategoryNegative:   true,
				},
			},
			DocumentVersion: "1.0",
		},
	}
}

func requestFor(canvas *models.Canvas, maxCount int) *models.GenerateSuggestionsRequest {
	return &models.GenerateSuggestionsRequest{
		CurrentDocument: canvas,
		MaxSuggestions:  &maxCount,
	}
}

func TestCoverageGaps(t *testing.T) {
	canvas := suggestCanvas()
	gaps := CoverageGaps(canvas)

	var titles []string
	for _, g := range gaps {
		titles = append(titles, g.Title)
	}

	// ac-2 (analytics) has no matching test case; ac-1 is covered.
	require.NotEmpty(t, gaps)
	assert.Contains(t, titles[0], "Analytics")
	assert.Equal(t, models.TestPriorityMedium, gaps[0].Priority)
	assert.Equal(t, []string{"ac-2"}, gaps[0].RelatedRequirements)

	// negative category enabled but uncovered, no negative tests, no
	// edge-case patterns
	types := map[models.SuggestionType]int{}
	for _, g := range gaps {
		types[g.SuggestionType]++
	}
	assert.Positive(t, types[models.SuggestionNegativeTest])
	assert.Positive(t, types[models.SuggestionEdgeCase])
}

func TestCoverageGapMustCriterionIsHigh(t *testing.T) {
	canvas := suggestCanvas()
	canvas.AcceptanceCriteria[0].Title = "Password reset email arrives"

	gaps := CoverageGaps(canvas)
	found := false
	for _, g := range gaps {
		if len(g.RelatedRequirements) == 1 && g.RelatedRequirements[0] == "ac-1" {
			assert.Equal(t, models.TestPriorityHigh, g.Priority)
			found = true
		}
	}
	assert.True(t, found)
}

func TestClarificationFlagsVagueTerms(t *testing.T) {
	canvas := suggestCanvas()
	suggestions := ClarificationSuggestions(canvas)

	found := false
	for _, s := range suggestions {
		if s.SuggestionType == models.SuggestionClarificationQuestion &&
			len(s.RelatedRequirements) == 1 && s.RelatedRequirements[0] == "ac-2" {
			assert.Contains(t, s.Title, "appropriate")
			found = true
		}
	}
	assert.True(t, found, "expected the vague term in ac-2 to be flagged")
}

func TestClarificationFlagsShortProblem(t *testing.T) {
	canvas := suggestCanvas()
	canvas.TicketSummary.Problem = "It is broken"

	suggestions := ClarificationSuggestions(canvas)
	found := false
	for _, s := range suggestions {
		if s.TargetSection == models.SectionTicketSummary && s.Priority == models.TestPriorityHigh {
			found = true
		}
	}
	assert.True(t, found)
}

func TestClarificationFlagsPriorityInconsistency(t *testing.T) {
	canvas := suggestCanvas()
	canvas.AcceptanceCriteria = []models.AcceptanceCriterion{
		{ID: "ac-1", Title: "Login succeeds quickly", Description: "d", Priority: models.PriorityMust},
		{ID: "ac-2", Title: "Login fails gracefully", Description: "d", Priority: models.PriorityCould},
	}

	suggestions := ClarificationSuggestions(canvas)
	found := false
	for _, s := range suggestions {
		if len(s.RelatedRequirements) == 2 {
			assert.Contains(t, s.Title, "login")
			found = true
		}
	}
	assert.True(t, found)
}

func TestEdgeCaseSuggestionsAreConditional(t *testing.T) {
	canvas := suggestCanvas()
	suggestions := EdgeCaseSuggestions(canvas)

	// auth + mobile signals present; no form-input or stateful signals
	var titles []string
	for _, s := range suggestions {
		titles = append(titles, s.Title)
	}
	assert.Contains(t, titles, "Session timeout during the flow")
	assert.Contains(t, titles, "Orientation change mid-flow")
	assert.NotContains(t, titles, "Concurrent operations")
}

func TestPerspectiveSuggestionsFollowProfile(t *testing.T) {
	profile := &models.QAProfile{QACategories: map[models.QACategory]bool{
		models.CategoryAccessibility: true,
		models.CategorySecurity:      true,
	}}

	suggestions := PerspectiveSuggestions(profile)
	require.Len(t, suggestions, 3)
	assert.Equal(t, models.SuggestionSecurityTest, suggestions[0].SuggestionType)
	assert.Equal(t, models.SuggestionAccessibilityTest, suggestions[1].SuggestionType)
	assert.Contains(t, suggestions[1].Tags, "accessibility")
}

func TestFilterIsIdempotent(t *testing.T) {
	pool := []models.Suggestion{
		{SuggestionType: models.SuggestionEdgeCase, Title: "a"},
		{SuggestionType: models.SuggestionCoverageGap, Title: "b"},
		{SuggestionType: models.SuggestionImprovement, Title: "c"},
	}
	exclude := []models.SuggestionType{models.SuggestionImprovement}
	focus := []models.SuggestionType{models.SuggestionEdgeCase, models.SuggestionCoverageGap}

	once := Filter(pool, exclude, focus)
	twice := Filter(once, exclude, focus)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 2)
}

func TestRankOrdersByPriorityThenRelevance(t *testing.T) {
	canvas := suggestCanvas()
	pool := []models.Suggestion{
		{SuggestionType: models.SuggestionImprovement, Title: "low prio", Priority: models.TestPriorityLow},
		{SuggestionType: models.SuggestionCoverageGap, Title: "high gap", Priority: models.TestPriorityHigh, Tags: []string{"login"}},
		{SuggestionType: models.SuggestionUIVerification, Title: "high ui", Priority: models.TestPriorityHigh},
	}

	ranked := Rank(pool, canvas)
	require.Len(t, ranked, 3)
	assert.Equal(t, "high gap", ranked[0].Title)
	assert.Equal(t, "high ui", ranked[1].Title)
	assert.Equal(t, "low prio", ranked[2].Title)
}

func TestGenerateCapsAndAssignsIDs(t *testing.T) {
	gen := &fakeGenerator{text: "[]"}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 3))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	require.Len(t, result.Suggestions, 3)
	for _, s := range result.Suggestions {
		assert.NotEmpty(t, s.ID)
	}
	assert.NotEmpty(t, result.ContextSummary)
	assert.False(t, result.GeneratedAt.IsZero())
}

func TestGenerateZeroMaxSkipsModel(t *testing.T) {
	gen := &fakeGenerator{text: "[]"}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 0))
	require.NoError(t, err)

	assert.Empty(t, result.Suggestions)
	assert.Zero(t, result.TotalCount)
	assert.Zero(t, gen.calls)
}

func TestGenerateSurvivesModelFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider outage")}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 5))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Suggestions)
}

func TestGenerateMergesValidAISuggestions(t *testing.T) {
	gen := &fakeGenerator{text: `[
		{"suggestion_type":"security_test","title":"Probe token reuse","description":"Replay an old session token","priority":"high","tags":["auth"]},
		{"suggestion_type":"nonsense","title":"bad","description":"bad"}
	]`}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 10))
	require.NoError(t, err)

	found := false
	for _, s := range result.Suggestions {
		if s.Title == "Probe token reuse" {
			found = true
		}
	}
	assert.True(t, found, "expected the valid AI suggestion to survive")
}

func TestGenerateBindsSuggestionTool(t *testing.T) {
	gen := &fakeGenerator{tools: []llm.ToolCall{
		{Name: "propose_suggestion", Input: []byte(`{"suggestion_type":"security_test","title":"Replay an expired token","description":"Reuse an old session token after logout","priority":"high","tags":["auth"]}`)},
		{Name: "propose_suggestion", Input: []byte(`not json`)},
		{Name: "unrelated_tool", Input: []byte(`{}`)},
	}}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 10))
	require.NoError(t, err)

	require.NotNil(t, gen.lastReq)
	require.Len(t, gen.lastReq.Tools, 1)
	assert.Equal(t, "propose_suggestion", gen.lastReq.Tools[0].Name)
	assert.NotEmpty(t, gen.lastReq.Tools[0].Parameters)

	found := false
	for _, s := range result.Suggestions {
		assert.NotEqual(t, "unrelated_tool", s.Title)
		if s.Title == "Replay an expired token" {
			found = true
		}
	}
	assert.True(t, found, "expected the tool-call suggestion to survive")
}

func TestGenerateDiscardsHedgedEnhancement(t *testing.T) {
	// The embedded candidate is valid JSON, but the surrounding hedging
	// marks the whole response as unreliable.
	gen := &fakeGenerator{text: `Maybe? Possibly? It's unclear?
		[{"suggestion_type":"security_test","title":"Probe token reuse","description":"Replay an old session token","priority":"high","tags":["auth"]}]`}
	engine := New(gen)

	result, err := engine.Generate(context.Background(), "req-1", requestFor(suggestCanvas(), 10))
	require.NoError(t, err)

	assert.NotEmpty(t, result.Suggestions)
	for _, s := range result.Suggestions {
		assert.NotEqual(t, "Probe token reuse", s.Title)
	}
}

func TestGenerateEmptyPoolErrors(t *testing.T) {
	// No criteria, no enabled categories, negative and boundary coverage
	// already present, no content signals, and a failing enhancer: the
	// rule pool is empty and the AI contributes nothing.
	canvas := &models.Canvas{
		TicketSummary: models.TicketSummary{
			Problem:  "Checkout flow rejects expired coupon codes with an error",
			Solution: "Checkout flow rejects expired coupon codes with an error",
			Context:  "Checkout",
		},
		TestCases: []models.TestCase{
			gherkinCase("tc-1", "Coupon rejected with invalid code boundary empty", "negative", "an expired coupon"),
		},
		Metadata: models.CanvasMetadata{TicketID: "T-1", DocumentVersion: "1.0"},
	}

	gen := &fakeGenerator{err: errors.New("outage")}
	result, err := New(gen).Generate(context.Background(), "req-1", requestFor(canvas, 5))

	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Nil(t, result)
}
