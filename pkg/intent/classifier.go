package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/schema"
)

// clarificationThreshold is the classifier confidence below which the
// engine asks instead of acting.
const clarificationThreshold = 0.5

// tempClassification keeps intent classification near-deterministic.
const tempClassification = 0.1

// Classify runs the model classifier over the conversation and applies
// the deterministic post-rules. It never fails: when classification
// itself errors, the fallback intent is returned with zero confidence.
func (e *Engine) Classify(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas) *models.IntentClassification {
	message := models.LastUserMessage(messages)

	classification, err := e.classifyWithModel(ctx, requestID, messages, canvas)
	if err != nil {
		slog.Warn("Intent classification failed, using fallback intent",
			"request_id", requestID, "error", err)
		classification = &models.IntentClassification{
			Intent:     models.IntentFallback,
			Confidence: 0,
			Reasoning:  "classification unavailable",
		}
	}

	applyPostRules(classification, message)
	classification.ShouldModifyCanvas = classification.Intent == models.IntentModifyCanvas
	classification.RequiresClarification = classification.Intent == models.IntentAskClarification
	return classification
}

func (e *Engine) classifyWithModel(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas) (*models.IntentClassification, error) {
	msgs := e.prompts.IntentClassification(messages, canvas)
	temp := tempClassification
	raw, err := e.client.GenerateObject(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   "classify_intent",
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}
	return schema.ParseIntentClassification(raw)
}

// applyPostRules enforces the deterministic routing rules on top of the
// model verdict. The lexicon hints win over the model when they
// disagree strongly; the engine is biased toward action.
func applyPostRules(c *models.IntentClassification, message string) {
	lower := strings.ToLower(message)

	offTopic := countMatches(lower, offTopicKeywords)
	onTopic := countMatches(lower, qaKeywords)
	modify := countMatches(lower, modifyKeywords)
	question := countMatches(lower, questionKeywords)

	seedKeywords(c, lower)

	// Off-topic chatter wins regardless of model confidence.
	if offTopic > 0 && offTopic >= onTopic {
		c.Intent = models.IntentOffTopic
		return
	}

	if c.Intent == models.IntentFallback {
		return
	}

	// Low confidence asks instead of acting.
	if c.Confidence < clarificationThreshold {
		c.Intent = models.IntentAskClarification
		return
	}

	// Clarification needs an explicit ambiguity signal; otherwise act on
	// the strongest lexicon evidence.
	if c.Intent == models.IntentAskClarification && !hasAmbiguitySignals(message) {
		if modify >= question && modify > 0 {
			c.Intent = models.IntentModifyCanvas
		} else if question > 0 {
			c.Intent = models.IntentProvideInformation
		}
	}
}

// seedKeywords records the lexicon hits that informed routing.
func seedKeywords(c *models.IntentClassification, lower string) {
	for _, kw := range modifyKeywords {
		if strings.Contains(lower, kw) {
			c.Keywords = append(c.Keywords, kw)
		}
	}
	for _, kw := range questionKeywords {
		if strings.Contains(lower, kw) {
			c.Keywords = append(c.Keywords, kw)
		}
	}
}
