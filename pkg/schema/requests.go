package schema

import (
	"fmt"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// MaxSuggestionsLimit caps how many suggestions one request may ask for.
const MaxSuggestionsLimit = 10

// suggestionTypeNames returns the valid suggestion type names for enum
// issue messages.
func suggestionTypeNames() []string {
	names := make([]string, len(models.AllSuggestionTypes))
	for i, st := range models.AllSuggestionTypes {
		names[i] = string(st)
	}
	return names
}

// ParseAnalyzeTicketRequest decodes and validates the analyze endpoint
// body, including the embedded ticket JSON.
func ParseAnalyzeTicketRequest(data []byte) (*models.AnalyzeTicketRequest, *models.Ticket, error) {
	var req models.AnalyzeTicketRequest
	if err := decodeLenient(data, &req, "analyze_ticket_request"); err != nil {
		return nil, nil, err
	}

	l := &issueList{}
	if len(req.TicketJSON) == 0 {
		l.missing("ticket_json")
	}
	if err := l.err("analyze_ticket_request"); err != nil {
		return nil, nil, err
	}

	if err := ValidateQAProfile(&req.QAProfile); err != nil {
		return nil, nil, err
	}

	ticket, err := ParseTicket(req.TicketJSON)
	if err != nil {
		return nil, nil, err
	}
	return &req, ticket, nil
}

// ParseUpdateCanvasRequest decodes and validates the update endpoint body.
// An empty messages array is a validation error.
func ParseUpdateCanvasRequest(data []byte) (*models.UpdateCanvasRequest, error) {
	var req models.UpdateCanvasRequest
	if err := decodeLenient(data, &req, "update_canvas_request"); err != nil {
		return nil, err
	}

	l := &issueList{}
	if len(req.Messages) == 0 {
		l.outOfRange("messages", "at least one message is required", "0")
	}
	for i, msg := range req.Messages {
		path := fmt.Sprintf("messages[%d]", i)
		if !msg.Role.IsValid() {
			l.invalidEnum(path+".role", string(msg.Role), "user", "assistant", "system")
		}
		if msg.Content == "" {
			l.missing(path + ".content")
		}
	}
	if err := l.err("update_canvas_request"); err != nil {
		return nil, err
	}

	if req.CurrentDocument != nil {
		if err := ValidateCanvas(req.CurrentDocument); err != nil {
			return nil, err
		}
	}
	return &req, nil
}

// ParseGenerateSuggestionsRequest decodes and validates the suggestions
// endpoint body.
func ParseGenerateSuggestionsRequest(data []byte) (*models.GenerateSuggestionsRequest, error) {
	var req models.GenerateSuggestionsRequest
	if err := decodeLenient(data, &req, "generate_suggestions_request"); err != nil {
		return nil, err
	}

	l := &issueList{}
	if req.CurrentDocument == nil {
		l.missing("current_document")
	}
	if req.MaxSuggestions != nil {
		if *req.MaxSuggestions < 0 || *req.MaxSuggestions > MaxSuggestionsLimit {
			l.outOfRange("max_suggestions",
				fmt.Sprintf("must be within [0, %d]", MaxSuggestionsLimit),
				fmt.Sprintf("%d", *req.MaxSuggestions))
		}
	}
	for i, focus := range req.FocusAreas {
		if !focus.IsValid() {
			l.invalidEnum(fmt.Sprintf("focus_areas[%d]", i), string(focus), suggestionTypeNames()...)
		}
	}
	for i, excluded := range req.ExcludeTypes {
		if !excluded.IsValid() {
			l.invalidEnum(fmt.Sprintf("exclude_types[%d]", i), string(excluded), suggestionTypeNames()...)
		}
	}
	if err := l.err("generate_suggestions_request"); err != nil {
		return nil, err
	}

	if req.CurrentDocument != nil {
		if err := ValidateCanvas(req.CurrentDocument); err != nil {
			return nil, err
		}
	}
	return &req, nil
}
