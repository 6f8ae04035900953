package models

import "encoding/json"

// AnalyzeTicketRequest is the body for POST /api/analyze-ticket.
// TicketJSON is kept raw so the schema layer owns its decoding.
type AnalyzeTicketRequest struct {
	QAProfile  QAProfile       `json:"qa_profile"`
	TicketJSON json.RawMessage `json:"ticket_json"`
}

// UpdateCanvasRequest is the body for POST /api/update-canvas.
type UpdateCanvasRequest struct {
	Messages           []ChatMessage `json:"messages"`
	CurrentDocument    *Canvas       `json:"current_document,omitempty"`
	OriginalTicketData *Ticket       `json:"original_ticket_data,omitempty"`
	SessionID          string        `json:"session_id,omitempty"`
}

// GenerateSuggestionsRequest is the body for POST /api/generate-suggestions.
// MaxSuggestions is a pointer so that an explicit 0 (return nothing, call
// no model) is distinguishable from an absent field (use the default).
type GenerateSuggestionsRequest struct {
	CurrentDocument     *Canvas          `json:"current_document"`
	MaxSuggestions      *int             `json:"max_suggestions,omitempty"`
	FocusAreas          []SuggestionType `json:"focus_areas,omitempty"`
	ExcludeTypes        []SuggestionType `json:"exclude_types,omitempty"`
	UserContext         string           `json:"user_context,omitempty"`
	ConversationHistory []ChatMessage    `json:"conversation_history,omitempty"`
}
