// Package intent routes conversation turns: it classifies the user's
// latest message, resolves which canvas sections it targets, and
// dispatches to regeneration, clarification, contextual answering, or
// rejection. Classification failures degrade to acting on the message
// rather than erroring the turn.
package intent

import (
	"context"
	"encoding/json"

	"github.com/qa-canvas/canvasd/pkg/deps"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/regen"
)

// Client is the slice of the provider gateway the engine uses.
type Client interface {
	GenerateText(ctx context.Context, req *llm.Request) (*llm.Response, error)
	GenerateObject(ctx context.Context, req *llm.Request) (json.RawMessage, error)
	StreamText(ctx context.Context, req *llm.Request) (<-chan llm.Chunk, error)
}

// Regenerator rewrites a canvas from feedback.
type Regenerator interface {
	Regenerate(ctx context.Context, requestID string, current *models.Canvas, ticketContext, feedback string, opts regen.Options) (*regen.Result, error)
}

// ResponseType labels what kind of answer a turn produced.
type ResponseType string

const (
	ResponseModification  ResponseType = "modification"
	ResponseClarification ResponseType = "clarification"
	ResponseInformation   ResponseType = "information"
	ResponseRejection     ResponseType = "rejection"
)

// Outcome is the routed result of one conversation turn. Exactly the
// fields matching Type are populated.
type Outcome struct {
	Type           ResponseType
	Classification *models.IntentClassification
	Detection      models.SectionDetection

	// ResponseModification
	Result     *regen.Result
	Dependency *models.DependencyAnalysis

	// ResponseClarification
	Questions []models.ClarificationQuestion

	// ResponseInformation
	Contextual *Contextual

	// ResponseRejection
	Message string
}

// Engine routes conversation turns.
type Engine struct {
	client      Client
	regenerator Regenerator
	prompts     *prompt.Builder
}

// New creates an Engine.
func New(client Client, regenerator Regenerator) *Engine {
	return &Engine{
		client:      client,
		regenerator: regenerator,
		prompts:     prompt.NewBuilder(),
	}
}

// Handle classifies the latest user message and dispatches it. A nil
// canvas downgrades modification requests to clarification, since there
// is nothing to modify yet.
func (e *Engine) Handle(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas, ticketContext string) (*Outcome, error) {
	message := models.LastUserMessage(messages)
	classification := e.Classify(ctx, requestID, messages, canvas)
	detection := e.DetectSections(ctx, requestID, message)
	if len(classification.TargetSections) == 0 {
		classification.TargetSections = detection.PrimaryTargets
	}

	outcome := &Outcome{
		Classification: classification,
		Detection:      detection,
	}

	intent := classification.Intent
	if intent == models.IntentFallback {
		// Classification failed; fall through to the endpoint's own
		// pipeline, which is document modification.
		intent = models.IntentModifyCanvas
	}
	if intent == models.IntentModifyCanvas && canvas == nil {
		intent = models.IntentAskClarification
	}

	switch intent {
	case models.IntentModifyCanvas:
		return e.handleModification(ctx, requestID, outcome, canvas, ticketContext, message)

	case models.IntentAskClarification:
		outcome.Type = ResponseClarification
		outcome.Questions = e.GenerateClarifications(ctx, requestID, messages, canvas, detection)
		return outcome, nil

	case models.IntentProvideInformation:
		contextual, err := e.AnswerContextually(ctx, requestID, messages, canvas, ticketContext, detection)
		if err != nil {
			return nil, err
		}
		outcome.Type = ResponseInformation
		outcome.Contextual = contextual
		return outcome, nil

	default:
		outcome.Type = ResponseRejection
		outcome.Message = rejectionMessage(DetectLanguage(message))
		return outcome, nil
	}
}

func (e *Engine) handleModification(ctx context.Context, requestID string, outcome *Outcome, canvas *models.Canvas, ticketContext, feedback string) (*Outcome, error) {
	targets := outcome.Detection.PrimaryTargets
	if len(targets) == 0 {
		targets = outcome.Detection.SecondaryTargets
	}
	analysis := deps.Analyze(targets, canvas)
	outcome.Dependency = &analysis

	result, err := e.regenerator.Regenerate(ctx, requestID, canvas, ticketContext, feedback, regen.Options{
		PreserveStructure: analysis.ConflictRisk != models.RiskHigh,
	})
	if err != nil {
		return nil, err
	}
	outcome.Type = ResponseModification
	outcome.Result = result
	return outcome, nil
}

// rejectionMessage is the deterministic off-topic reply.
func rejectionMessage(lang Language) string {
	if lang == LangSpanish {
		return "Solo puedo ayudar con la documentación QA de este ticket. " +
			"Pregúntame sobre temas relacionados con testing: criterios de aceptación, casos de prueba o advertencias del documento."
	}
	return "I can only help with QA documentation for this ticket. " +
		"Ask me about testing-related topics: acceptance criteria, test cases, or the document's warnings."
}
