package intent

import (
	"context"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
)

// tempContextual keeps informational answers grounded.
const tempContextual = 0.2

// Contextual is a streamed informational answer: the text stream plus
// the sections it draws on and suggested follow-up prompts.
type Contextual struct {
	Stream    <-chan llm.Chunk
	Citations []models.CanvasSection
	FollowUps []string
}

// AnswerContextually streams a grounded answer to an informational
// question about the document or its ticket.
func (e *Engine) AnswerContextually(ctx context.Context, requestID string, messages []models.ChatMessage, canvas *models.Canvas, ticketContext string, detection models.SectionDetection) (*Contextual, error) {
	msgs := e.prompts.ContextualAnswer(messages, canvas, ticketContext)
	temp := tempContextual
	stream, err := e.client.StreamText(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   "contextual_answer",
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, err
	}

	lang := DetectLanguage(models.LastUserMessage(messages))
	return &Contextual{
		Stream:    stream,
		Citations: citations(detection, canvas),
		FollowUps: followUps(lang, canvas),
	}, nil
}

// citations lists the canvas sections an answer draws on: the detected
// targets that actually carry content, or the whole document when
// detection found nothing.
func citations(detection models.SectionDetection, canvas *models.Canvas) []models.CanvasSection {
	targets := append(append([]models.CanvasSection{}, detection.PrimaryTargets...), detection.SecondaryTargets...)
	if len(targets) == 0 {
		targets = []models.CanvasSection{
			models.SectionTicketSummary,
			models.SectionAcceptanceCriteria,
			models.SectionTestCases,
		}
	}

	seen := map[models.CanvasSection]bool{}
	var cited []models.CanvasSection
	for _, section := range targets {
		if seen[section] || canvas == nil || canvas.SectionText(section) == "" {
			continue
		}
		seen[section] = true
		cited = append(cited, section)
	}
	return cited
}

// followUps proposes the next things the user might ask for.
func followUps(lang Language, canvas *models.Canvas) []string {
	if lang == LangSpanish {
		out := []string{"¿Quieres que agregue más casos de prueba?"}
		if canvas != nil && len(canvas.ConfigurationWarnings) > 0 {
			out = append(out, "¿Reviso las advertencias de configuración del documento?")
		}
		return append(out, "¿Debo ajustar la prioridad de algún criterio de aceptación?")
	}

	out := []string{"Want me to add more test cases for this area?"}
	if canvas != nil && len(canvas.ConfigurationWarnings) > 0 {
		out = append(out, "Should I walk through the document's configuration warnings?")
	}
	return append(out, "Should I adjust the priority of any acceptance criteria?")
}
