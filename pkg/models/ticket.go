// Package models defines the domain types shared across the service:
// tickets, QA profiles, the canvas document, intents, and suggestions.
package models

// Ticket is the immutable issue-tracker input consumed by the analyzer.
// It mirrors the scraper's JSON output; unknown fields are ignored.
type Ticket struct {
	IssueKey     string            `json:"issue_key"`
	Summary      string            `json:"summary"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	Priority     string            `json:"priority"`
	IssueType    string            `json:"issue_type"`
	Assignee     string            `json:"assignee,omitempty"`
	Reporter     string            `json:"reporter"`
	Comments     []TicketComment   `json:"comments"`
	Attachments  []TicketAttachment `json:"attachments"`
	Components   []string          `json:"components"`
	CustomFields map[string]any    `json:"custom_fields"`
	ScrapedAt    string            `json:"scraped_at"`
}

// TicketComment is a single comment on a ticket, in original order.
type TicketComment struct {
	Author string   `json:"author"`
	Body   string   `json:"body"`
	Date   string   `json:"date"`
	Images []string `json:"images,omitempty"`
	Links  []string `json:"links,omitempty"`
}

// TicketAttachment describes an attachment. The binary payload is omitted
// when the scraper marks it too big to embed.
type TicketAttachment struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime"`
	Size     int64  `json:"size"`
	TooBig   bool   `json:"too_big"`
	Data     []byte `json:"data,omitempty"`
}

// HasContent reports whether the ticket carries enough text to analyze.
// Empty summary and description force a degraded (partial) canvas.
func (t *Ticket) HasContent() bool {
	return t.Summary != "" || t.Description != ""
}
