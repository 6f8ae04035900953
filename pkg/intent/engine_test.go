package intent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/regen"
)

// fakeClient returns canned payloads per operation label.
type fakeClient struct {
	objects    map[string]string
	objectErrs map[string]error
	text       string
	textErr    error
	stream     []llm.Chunk
	streamErr  error
}

func (f *fakeClient) GenerateText(_ context.Context, _ *llm.Request) (*llm.Response, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	return &llm.Response{Text: f.text, Provider: "anthropic", Model: "claude-sonnet-4-5"}, nil
}

func (f *fakeClient) GenerateObject(_ context.Context, req *llm.Request) (json.RawMessage, error) {
	if err, ok := f.objectErrs[req.Operation]; ok {
		return nil, err
	}
	payload, ok := f.objects[req.Operation]
	if !ok {
		return nil, errors.New("no canned object")
	}
	return json.RawMessage(payload), nil
}

func (f *fakeClient) StreamText(_ context.Context, _ *llm.Request) (<-chan llm.Chunk, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	out := make(chan llm.Chunk, len(f.stream))
	for _, c := range f.stream {
		out <- c
	}
	close(out)
	return out, nil
}

type fakeRegenerator struct {
	lastFeedback string
	lastOpts     regen.Options
	result       *regen.Result
	err          error
}

func (f *fakeRegenerator) Regenerate(_ context.Context, _ string, current *models.Canvas, _, feedback string, opts regen.Options) (*regen.Result, error) {
	f.lastFeedback = feedback
	f.lastOpts = opts
	if f.err != nil {
		return &regen.Result{Canvas: current}, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &regen.Result{Canvas: current}, nil
}

func classificationJSON(intent string, confidence float64) string {
	payload := map[string]any{
		"intent":     intent,
		"confidence": confidence,
		"reasoning":  "canned",
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func testCanvas() *models.Canvas {
	return &models.Canvas{
		TicketSummary: models.TicketSummary{Problem: "p", Solution: "s", Context: "c"},
		AcceptanceCriteria: []models.AcceptanceCriterion{
			{ID: "ac-1", Title: "Login works", Description: "d", Priority: models.PriorityMust},
		},
		ConfigurationWarnings: []models.ConfigurationWarning{
			{Type: "t", Title: "w", Message: "m", Severity: models.SeverityLow},
		},
	}
}

func userTurn(content string) []models.ChatMessage {
	return []models.ChatMessage{{Role: models.RoleUser, Content: content}}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LangSpanish, DetectLanguage("¿Puedes agregar más casos de prueba?"))
	assert.Equal(t, LangSpanish, DetectLanguage("Por favor añade un escenario"))
	assert.Equal(t, LangEnglish, DetectLanguage("Please add a negative test case"))
	assert.Equal(t, LangEnglish, DetectLanguage(""))
}

func TestClassifyPostRules(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		message  string
		expected models.Intent
	}{
		{
			name:     "high confidence verdict passes through",
			payload:  classificationJSON("modify_canvas", 0.9),
			message:  "add a test case for expired sessions",
			expected: models.IntentModifyCanvas,
		},
		{
			name:     "low confidence asks for clarification",
			payload:  classificationJSON("modify_canvas", 0.3),
			message:  "add a test case for expired sessions",
			expected: models.IntentAskClarification,
		},
		{
			name:     "off-topic keywords dominate",
			payload:  classificationJSON("provide_information", 0.9),
			message:  "what's the weather like today",
			expected: models.IntentOffTopic,
		},
		{
			name:     "qa keywords outweigh an off-topic word",
			payload:  classificationJSON("modify_canvas", 0.9),
			message:  "add a test case and acceptance criteria for the football score ticket",
			expected: models.IntentModifyCanvas,
		},
		{
			name:     "unjustified clarification flips to action",
			payload:  classificationJSON("ask_clarification", 0.8),
			message:  "add a negative test for the login scenario",
			expected: models.IntentModifyCanvas,
		},
		{
			name:     "clarification stands on bare pronouns",
			payload:  classificationJSON("ask_clarification", 0.8),
			message:  "make it better",
			expected: models.IntentAskClarification,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{objects: map[string]string{"classify_intent": tt.payload}}
			engine := New(client, &fakeRegenerator{})

			c := engine.Classify(context.Background(), "req-1", userTurn(tt.message), testCanvas())
			assert.Equal(t, tt.expected, c.Intent)
			assert.Equal(t, c.Intent == models.IntentModifyCanvas, c.ShouldModifyCanvas)
			assert.Equal(t, c.Intent == models.IntentAskClarification, c.RequiresClarification)
		})
	}
}

func TestClassifyFailureFallsBack(t *testing.T) {
	client := &fakeClient{objectErrs: map[string]error{"classify_intent": errors.New("outage")}}
	engine := New(client, &fakeRegenerator{})

	c := engine.Classify(context.Background(), "req-1", userTurn("add a test"), testCanvas())
	assert.Equal(t, models.IntentFallback, c.Intent)
	assert.Zero(t, c.Confidence)
}

func TestDetectByKeywords(t *testing.T) {
	d := detectByKeywords("add acceptance criteria for session expiry")
	assert.Contains(t, d.PrimaryTargets, models.SectionAcceptanceCriteria)
	assert.Equal(t, models.DetectionKeyword, d.Method)
	assert.GreaterOrEqual(t, d.Confidence, 0.7)

	d = detectByKeywords("please reword the overview")
	assert.Empty(t, d.PrimaryTargets)
	assert.Contains(t, d.SecondaryTargets, models.SectionTicketSummary)
}

func TestDetectSectionsUsesModelWhenInconclusive(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"detect_sections": `{"sections":["test_cases"],"confidence":0.85}`,
	}}
	engine := New(client, &fakeRegenerator{})

	d := engine.DetectSections(context.Background(), "req-1", "make that part stronger")
	assert.Equal(t, models.DetectionAI, d.Method)
	assert.Equal(t, []models.CanvasSection{models.SectionTestCases}, d.PrimaryTargets)
	assert.InDelta(t, 0.85, d.Confidence, 0.001)
}

func TestDetectSectionsKeepsKeywordResultOnModelFailure(t *testing.T) {
	client := &fakeClient{objectErrs: map[string]error{"detect_sections": errors.New("outage")}}
	engine := New(client, &fakeRegenerator{})

	d := engine.DetectSections(context.Background(), "req-1", "reword the overview")
	assert.Equal(t, models.DetectionKeyword, d.Method)
	assert.Contains(t, d.SecondaryTargets, models.SectionTicketSummary)
}

func TestDetectSectionsSkipsModelWhenKeywordsDecisive(t *testing.T) {
	client := &fakeClient{} // any model call would fail
	engine := New(client, &fakeRegenerator{})

	d := engine.DetectSections(context.Background(), "req-1", "add acceptance criteria for the login test case scenarios")
	assert.NotEmpty(t, d.PrimaryTargets)
	assert.Equal(t, models.DetectionKeyword, d.Method)
}

func TestHandleModification(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"classify_intent": classificationJSON("modify_canvas", 0.9),
	}}
	regenerator := &fakeRegenerator{}
	engine := New(client, regenerator)

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("add a negative test case for expired sessions"), testCanvas(), "ticket ctx")
	require.NoError(t, err)

	assert.Equal(t, ResponseModification, outcome.Type)
	require.NotNil(t, outcome.Dependency)
	assert.Contains(t, outcome.Dependency.AffectedSections, models.SectionTestCases)
	assert.Equal(t, "add a negative test case for expired sessions", regenerator.lastFeedback)
	assert.True(t, regenerator.lastOpts.PreserveStructure)
}

func TestHandleSummaryEditDropsStructurePreservation(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"classify_intent": classificationJSON("modify_canvas", 0.9),
	}}
	regenerator := &fakeRegenerator{}
	engine := New(client, regenerator)

	_, err := engine.Handle(context.Background(), "req-1",
		userTurn("rewrite the summary and the problem description"), testCanvas(), "ticket ctx")
	require.NoError(t, err)
	assert.False(t, regenerator.lastOpts.PreserveStructure)
}

func TestHandleClarification(t *testing.T) {
	client := &fakeClient{
		objects: map[string]string{
			"classify_intent": classificationJSON("modify_canvas", 0.3),
			"detect_sections": `{"sections":[],"confidence":0}`,
		},
		text: "1. Which section should change?\n2. What should the result look like?",
	}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("change something"), testCanvas(), "ticket ctx")
	require.NoError(t, err)

	assert.Equal(t, ResponseClarification, outcome.Type)
	require.Len(t, outcome.Questions, 2)
	assert.Equal(t, "high", outcome.Questions[0].Priority)
	assert.Equal(t, "medium", outcome.Questions[1].Priority)
}

func TestHandleInformationStreams(t *testing.T) {
	client := &fakeClient{
		objects: map[string]string{
			"classify_intent": classificationJSON("provide_information", 0.9),
			"detect_sections": `{"sections":["acceptance_criteria"],"confidence":0.9}`,
		},
		stream: []llm.Chunk{
			&llm.TextChunk{Content: "The criteria cover login."},
			&llm.DoneChunk{},
		},
	}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("what do these cover?"), testCanvas(), "ticket ctx")
	require.NoError(t, err)

	assert.Equal(t, ResponseInformation, outcome.Type)
	require.NotNil(t, outcome.Contextual)
	assert.Contains(t, outcome.Contextual.Citations, models.SectionAcceptanceCriteria)
	assert.NotEmpty(t, outcome.Contextual.FollowUps)

	var text string
	for chunk := range outcome.Contextual.Stream {
		if tc, ok := chunk.(*llm.TextChunk); ok {
			text += tc.Content
		}
	}
	assert.Equal(t, "The criteria cover login.", text)
}

func TestHandleOffTopicRejection(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"classify_intent": classificationJSON("off_topic", 0.9),
		"detect_sections": `{"sections":[],"confidence":0}`,
	}}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("tell me a joke"), testCanvas(), "ticket ctx")
	require.NoError(t, err)
	assert.Equal(t, ResponseRejection, outcome.Type)
	assert.Contains(t, outcome.Message, "QA documentation")
	assert.Contains(t, outcome.Message, "testing-related")
}

func TestHandleOffTopicRejectionSpanish(t *testing.T) {
	client := &fakeClient{objects: map[string]string{
		"classify_intent": classificationJSON("off_topic", 0.9),
		"detect_sections": `{"sections":[],"confidence":0}`,
	}}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("¿Qué película me recomiendas para esta noche?"), testCanvas(), "ticket ctx")
	require.NoError(t, err)
	assert.Equal(t, ResponseRejection, outcome.Type)
	assert.Contains(t, outcome.Message, "documentación QA")
}

func TestHandleFallbackRoutesToModification(t *testing.T) {
	client := &fakeClient{objectErrs: map[string]error{
		"classify_intent": errors.New("outage"),
		"detect_sections": errors.New("outage"),
	}}
	regenerator := &fakeRegenerator{}
	engine := New(client, regenerator)

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("add coverage for concurrent logins to the test cases"), testCanvas(), "ticket ctx")
	require.NoError(t, err)
	assert.Equal(t, ResponseModification, outcome.Type)
	assert.NotEmpty(t, regenerator.lastFeedback)
}

func TestHandleModifyWithoutCanvasAsksForClarification(t *testing.T) {
	client := &fakeClient{
		objects: map[string]string{
			"classify_intent": classificationJSON("modify_canvas", 0.9),
			"detect_sections": `{"sections":[],"confidence":0}`,
		},
		text: "1. Which ticket should I analyze first?",
	}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("add more test cases"), nil, "ticket ctx")
	require.NoError(t, err)
	assert.Equal(t, ResponseClarification, outcome.Type)
}

func TestClarificationAddsAssumptionQuestions(t *testing.T) {
	client := &fakeClient{
		objects: map[string]string{
			"classify_intent": classificationJSON("ask_clarification", 0.9),
			"detect_sections": `{"sections":[],"confidence":0}`,
		},
		text: "1. Which flow is affected?",
	}
	engine := New(client, &fakeRegenerator{})

	outcome, err := engine.Handle(context.Background(), "req-1",
		userTurn("please improve this"), testCanvas(), "ticket ctx")
	require.NoError(t, err)

	require.Len(t, outcome.Questions, 2)
	assert.Equal(t, "Which flow is affected?", outcome.Questions[0].Question)
	assert.Contains(t, outcome.Questions[1].Question, "Which section")
	assert.Equal(t, "medium", outcome.Questions[1].Priority)
}

func TestAssumptionQuestionsRespectCap(t *testing.T) {
	questions := []models.ClarificationQuestion{
		{Question: "One?"}, {Question: "Two?"}, {Question: "Three?"},
	}
	out := appendAssumptionQuestions(questions, "improve the comprehensive yet simple flow", "")
	assert.Len(t, out, maxClarificationQuestions)
}

func TestParseQuestionsCap(t *testing.T) {
	text := "1. One?\n2. Two?\n3. Three?\n4. Four?"
	questions := parseQuestions(text, models.SectionDetection{})
	assert.Len(t, questions, maxClarificationQuestions)
}

func TestClarificationFallbackQuestion(t *testing.T) {
	client := &fakeClient{textErr: errors.New("outage")}
	engine := New(client, &fakeRegenerator{})

	questions := engine.GenerateClarifications(context.Background(), "req-1",
		userTurn("¿puedes mejorar esto más?"), testCanvas(), models.SectionDetection{})
	require.Len(t, questions, 1)
	assert.Contains(t, questions[0].Question, "¿")
}
