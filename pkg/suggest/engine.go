// Package suggest proposes improvements over a canvas. The rules carry
// the intelligence: coverage-gap, clarification, edge-case, and
// perspective analyses always run; the model only enhances the pool,
// and its failures never fail the endpoint.
package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/schema"
	"github.com/qa-canvas/canvasd/pkg/uncertainty"
)

// DefaultMaxSuggestions applies when the request leaves the cap unset.
const DefaultMaxSuggestions = 5

// tempSuggestions gives the enhancer room to propose varied ideas.
const tempSuggestions = 0.5

// suggestionToolName is the tool the enhancer binds; the model proposes
// one suggestion per call.
const suggestionToolName = "propose_suggestion"

var suggestionToolSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"suggestion_type": {"type": "string"},
		"title": {"type": "string"},
		"description": {"type": "string"},
		"target_section": {"type": "string"},
		"priority": {"type": "string", "enum": ["high", "medium", "low"]},
		"reasoning": {"type": "string"},
		"tags": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["suggestion_type", "title", "description"]
}`)

// Generator is the slice of the provider gateway the engine uses.
type Generator interface {
	GenerateText(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// Result is the suggestions endpoint payload.
type Result struct {
	Suggestions    []models.Suggestion `json:"suggestions"`
	TotalCount     int                 `json:"total_count"`
	GeneratedAt    time.Time           `json:"generated_at"`
	ContextSummary string              `json:"context_summary"`
}

// Engine produces suggestions.
type Engine struct {
	gen     Generator
	prompts *prompt.Builder
	now     func() time.Time
}

// New creates an Engine on top of a text generator.
func New(gen Generator) *Engine {
	return &Engine{
		gen:     gen,
		prompts: prompt.NewBuilder(),
		now:     time.Now,
	}
}

// Generate runs the rule analyses and the AI enhancer, then filters,
// ranks, and caps the pool. A max of zero returns an empty result
// without any model call.
func (e *Engine) Generate(ctx context.Context, requestID string, req *models.GenerateSuggestionsRequest) (*Result, error) {
	canvas := req.CurrentDocument

	maxCount := DefaultMaxSuggestions
	if req.MaxSuggestions != nil {
		maxCount = *req.MaxSuggestions
	}
	if maxCount == 0 {
		return &Result{
			Suggestions:    []models.Suggestion{},
			TotalCount:     0,
			GeneratedAt:    e.now().UTC(),
			ContextSummary: "Suggestion generation was skipped: the request asked for zero suggestions.",
		}, nil
	}

	pool := CoverageGaps(canvas)
	pool = append(pool, ClarificationSuggestions(canvas)...)
	pool = append(pool, EdgeCaseSuggestions(canvas)...)
	pool = append(pool, PerspectiveSuggestions(&canvas.Metadata.QAProfile)...)
	ruleCount := len(pool)

	enhanced := e.enhance(ctx, requestID, canvas, req.FocusAreas, req.UserContext, maxCount)
	pool = append(pool, enhanced...)

	if len(pool) == 0 {
		appErr := apperr.New(apperr.KindInternal, "no suggestions could be generated for this document")
		appErr.RequestID = requestID
		return nil, appErr
	}

	filtered := Filter(pool, req.ExcludeTypes, req.FocusAreas)
	ranked := Rank(filtered, canvas)
	if len(ranked) > maxCount {
		ranked = ranked[:maxCount]
	}
	for i := range ranked {
		ranked[i].ID = uuid.New().String()
	}

	return &Result{
		Suggestions:    ranked,
		TotalCount:     len(ranked),
		GeneratedAt:    e.now().UTC(),
		ContextSummary: contextSummary(canvas, ruleCount, len(enhanced)),
	}, nil
}

// enhance asks the model for additional suggestions. Any failure
// degrades to the rule-based pool.
func (e *Engine) enhance(ctx context.Context, requestID string, canvas *models.Canvas, focusAreas []models.SuggestionType, userContext string, maxCount int) []models.Suggestion {
	enhanced, _ := uncertainty.Guarded(ctx, "enhance_suggestions",
		func(ctx context.Context) ([]models.Suggestion, error) {
			return e.enhanceOnce(ctx, requestID, canvas, focusAreas, userContext, maxCount)
		},
		func() []models.Suggestion { return nil })
	return enhanced
}

// enhanceOnce runs one enhancement round trip bound to the suggestion
// tool and validates every candidate the model proposed. Models that
// answer in prose instead of tool calls fall back to JSON extraction.
func (e *Engine) enhanceOnce(ctx context.Context, requestID string, canvas *models.Canvas, focusAreas []models.SuggestionType, userContext string, maxCount int) ([]models.Suggestion, error) {
	msgs := e.prompts.SuggestionEnhancement(canvas, focusAreas, userContext, maxCount)
	temp := tempSuggestions
	resp, err := e.gen.GenerateText(ctx, &llm.Request{
		RequestID: requestID,
		Operation: "enhance_suggestions",
		System:    msgs.System,
		Messages:  []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Tools: []llm.Tool{{
			Name:        suggestionToolName,
			Description: "Propose one improvement suggestion for the QA document.",
			Parameters:  suggestionToolSchema,
		}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	candidates, err := parseCandidates(resp)
	if err != nil {
		return nil, err
	}

	var valid []models.Suggestion
	for i := range candidates {
		if candidates[i].Priority == "" {
			candidates[i].Priority = models.TestPriorityMedium
		}
		if err := schema.ValidateSuggestion(&candidates[i]); err != nil {
			continue
		}
		valid = append(valid, candidates[i])
	}
	return valid, nil
}

// parseCandidates reads suggestions off a response: one per tool call
// when the model used the binding, otherwise a JSON array in the text.
func parseCandidates(resp *llm.Response) ([]models.Suggestion, error) {
	if len(resp.ToolCalls) > 0 {
		var candidates []models.Suggestion
		for _, call := range resp.ToolCalls {
			if call.Name != suggestionToolName {
				continue
			}
			var s models.Suggestion
			if err := json.Unmarshal(call.Input, &s); err != nil {
				continue
			}
			candidates = append(candidates, s)
		}
		return candidates, nil
	}

	if sig := uncertainty.Inspect(resp.Text); sig.ConfidenceScore < 0.5 {
		return nil, fmt.Errorf("enhancement response hedged: %s", strings.Join(sig.Indicators, "; "))
	}
	raw, ok := schema.ExtractJSON(resp.Text)
	if !ok {
		return nil, fmt.Errorf("enhancement response did not contain JSON")
	}
	var candidates []models.Suggestion
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, fmt.Errorf("enhancement payload rejected: %w", err)
	}
	return candidates, nil
}

// Filter applies exclusion and focus rules. Pure and idempotent:
// filtering a filtered slice is a no-op.
func Filter(suggestions []models.Suggestion, excludeTypes, focusAreas []models.SuggestionType) []models.Suggestion {
	excluded := map[models.SuggestionType]bool{}
	for _, t := range excludeTypes {
		excluded[t] = true
	}
	focused := map[models.SuggestionType]bool{}
	for _, t := range focusAreas {
		focused[t] = true
	}

	out := make([]models.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		if excluded[s.SuggestionType] {
			continue
		}
		if len(focused) > 0 && !focused[s.SuggestionType] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// typeScores weight suggestion categories for ranking. Gap and failure
// coverage outrank cosmetic improvements.
var typeScores = map[models.SuggestionType]float64{
	models.SuggestionCoverageGap:           1.0,
	models.SuggestionNegativeTest:          0.9,
	models.SuggestionEdgeCase:              0.85,
	models.SuggestionClarificationQuestion: 0.8,
	models.SuggestionDataValidation:        0.75,
	models.SuggestionSecurityTest:          0.75,
	models.SuggestionSecurity:              0.75,
	models.SuggestionFunctionalTest:        0.7,
	models.SuggestionIntegrationTest:       0.7,
	models.SuggestionPerformanceTest:       0.65,
	models.SuggestionAccessibilityTest:     0.65,
	models.SuggestionUIVerification:        0.6,
	models.SuggestionImprovement:           0.5,
}

func priorityScore(p models.TestCasePriority) float64 {
	switch p {
	case models.TestPriorityHigh:
		return 1.0
	case models.TestPriorityMedium:
		return 0.6
	default:
		return 0.3
	}
}

// Relevance scores one suggestion against the document.
func Relevance(s *models.Suggestion, canvasText string) float64 {
	overlap := 0.0
	if len(s.Tags) > 0 {
		hits := 0
		for _, tag := range s.Tags {
			if tag != "" && anyContained(canvasText, []string{tag}) {
				hits++
			}
		}
		overlap = float64(hits) / float64(len(s.Tags))
	}
	return 0.4*priorityScore(s.Priority) + 0.4*typeScores[s.SuggestionType] + 0.2*overlap
}

// Rank orders suggestions by priority, then relevance. The sort is
// stable, so equal-scoring suggestions keep rule order.
func Rank(suggestions []models.Suggestion, canvas *models.Canvas) []models.Suggestion {
	text := canvas.FullText()

	type scored struct {
		suggestion models.Suggestion
		relevance  float64
	}
	pool := make([]scored, len(suggestions))
	for i, s := range suggestions {
		pool[i] = scored{suggestion: s, relevance: Relevance(&s, text)}
	}
	sort.SliceStable(pool, func(i, j int) bool {
		pi, pj := priorityScore(pool[i].suggestion.Priority), priorityScore(pool[j].suggestion.Priority)
		if pi != pj {
			return pi > pj
		}
		return pool[i].relevance > pool[j].relevance
	})

	out := make([]models.Suggestion, len(pool))
	for i, sc := range pool {
		out[i] = sc.suggestion
	}
	return out
}

func contextSummary(canvas *models.Canvas, ruleCount, aiCount int) string {
	return fmt.Sprintf("Reviewed %d acceptance criteria and %d test cases; %d rule-based and %d AI-generated candidates considered.",
		len(canvas.AcceptanceCriteria), len(canvas.TestCases), ruleCount, aiCount)
}
