package intent

import (
	"context"
	"log/slog"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/uncertainty"
)

// maxClarificationQuestions caps one clarification turn.
const maxClarificationQuestions = 3

// tempClarification gives question generation a little freedom.
const tempClarification = 0.4

// GenerateClarifications asks the model for the questions that would
// make an ambiguous request actionable. Model failure degrades to a
// single deterministic, language-matched question.
func (e *Engine) GenerateClarifications(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas, detection models.SectionDetection) []models.ClarificationQuestion {
	message := models.LastUserMessage(messages)
	lang := DetectLanguage(message)

	msgs := e.prompts.Clarification(messages, canvas)
	temp := tempClarification
	resp, err := e.client.GenerateText(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   "generate_clarification",
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})

	var questions []models.ClarificationQuestion
	if err != nil {
		slog.Warn("Clarification generation failed, using fallback question",
			"request_id", requestID, "error", err)
		questions = []models.ClarificationQuestion{fallbackQuestion(lang, detection)}
	} else if questions = parseQuestions(resp.Text, detection); len(questions) == 0 {
		questions = []models.ClarificationQuestion{fallbackQuestion(lang, detection)}
	}
	return appendAssumptionQuestions(questions, message, primaryTarget(detection))
}

// appendAssumptionQuestions adds questions derived from assumptions the
// request forced, up to the per-turn cap.
func appendAssumptionQuestions(questions []models.ClarificationQuestion, message string, target models.CanvasSection) []models.ClarificationQuestion {
	assumptions := uncertainty.DetectAssumptions(nil, message)
	for _, q := range uncertainty.ClarifyingQuestions(assumptions) {
		if len(questions) >= maxClarificationQuestions {
			break
		}
		questions = append(questions, models.ClarificationQuestion{
			Question:      q,
			Category:      "scope",
			TargetSection: target,
			Priority:      "medium",
		})
	}
	return questions
}

// parseQuestions extracts the numbered or line-separated questions from
// the model's prose answer.
func parseQuestions(text string, detection models.SectionDetection) []models.ClarificationQuestion {
	target := primaryTarget(detection)
	var questions []models.ClarificationQuestion

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789.)- ")
		if line == "" || !strings.Contains(line, "?") {
			continue
		}
		priority := "medium"
		if len(questions) == 0 {
			priority = "high"
		}
		questions = append(questions, models.ClarificationQuestion{
			Question:      line,
			Category:      "scope",
			TargetSection: target,
			Priority:      priority,
		})
		if len(questions) == maxClarificationQuestions {
			break
		}
	}
	return questions
}

func primaryTarget(detection models.SectionDetection) models.CanvasSection {
	if len(detection.PrimaryTargets) > 0 {
		return detection.PrimaryTargets[0]
	}
	if len(detection.SecondaryTargets) > 0 {
		return detection.SecondaryTargets[0]
	}
	return ""
}

func fallbackQuestion(lang Language, detection models.SectionDetection) models.ClarificationQuestion {
	question := "Which part of the document should I change, and what should the result look like?"
	if lang == LangSpanish {
		question = "¿Qué parte del documento debo cambiar y cómo debería quedar?"
	}
	return models.ClarificationQuestion{
		Question:      question,
		Category:      "scope",
		TargetSection: primaryTarget(detection),
		Priority:      "high",
	}
}
