package models

import (
	"strings"
	"time"
)

// TicketSummary is the problem/solution/context digest of a ticket.
// All three fields are non-empty in a valid canvas.
type TicketSummary struct {
	Problem  string `json:"problem"`
	Solution string `json:"solution"`
	Context  string `json:"context"`
}

// Severity grades configuration warnings.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IsValid checks if the severity is valid
func (s Severity) IsValid() bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ConfigurationWarning flags profile or generation problems surfaced in
// the canvas. Partial results always carry at least one warning.
type ConfigurationWarning struct {
	Type           string   `json:"type"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
	Severity       Severity `json:"severity"`
}

// CriterionPriority ranks acceptance criteria (MoSCoW without "won't").
type CriterionPriority string

const (
	PriorityMust   CriterionPriority = "must"
	PriorityShould CriterionPriority = "should"
	PriorityCould  CriterionPriority = "could"
)

// IsValid checks if the criterion priority is valid
func (p CriterionPriority) IsValid() bool {
	return p == PriorityMust || p == PriorityShould || p == PriorityCould
}

// AcceptanceCriterion is a testable statement defining "done" for some
// aspect of the ticket. IDs are unique within a canvas.
type AcceptanceCriterion struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Priority    CriterionPriority `json:"priority"`
	Category    string            `json:"category"`
	Testable    bool              `json:"testable"`
}

// CanvasMetadata carries document provenance and versioning.
type CanvasMetadata struct {
	TicketID           string    `json:"ticket_id"`
	QAProfile          QAProfile `json:"qa_profile"`
	GeneratedAt        time.Time `json:"generated_at"`
	DocumentVersion    string    `json:"document_version"`
	PreviousVersion    string    `json:"previous_version,omitempty"`
	AIModel            string    `json:"ai_model,omitempty"`
	GenerationTimeMS   int64     `json:"generation_time_ms,omitempty"`
	RegenerationReason string    `json:"regeneration_reason,omitempty"`
	IsPartialResult    bool      `json:"is_partial_result,omitempty"`
	WordCount          int       `json:"word_count,omitempty"`
}

// Canvas is the QA documentation artifact. It is created by the analyzer
// and only ever replaced wholesale by the regenerator — never patched
// section by section.
type Canvas struct {
	TicketSummary         TicketSummary          `json:"ticket_summary"`
	ConfigurationWarnings []ConfigurationWarning `json:"configuration_warnings"`
	AcceptanceCriteria    []AcceptanceCriterion  `json:"acceptance_criteria"`
	TestCases             []TestCase             `json:"test_cases"`
	Metadata              CanvasMetadata         `json:"metadata"`
}

// WordCount counts whitespace-separated words across the textual sections.
func (c *Canvas) WordCount() int {
	count := len(strings.Fields(c.TicketSummary.Problem)) +
		len(strings.Fields(c.TicketSummary.Solution)) +
		len(strings.Fields(c.TicketSummary.Context))
	for _, ac := range c.AcceptanceCriteria {
		count += len(strings.Fields(ac.Title)) + len(strings.Fields(ac.Description))
	}
	for _, tc := range c.TestCases {
		count += tc.wordCount()
	}
	return count
}

// SectionText flattens one canvas section to lowercase text. Used by the
// suggestion engine for keyword overlap scoring.
func (c *Canvas) SectionText(section CanvasSection) string {
	var sb strings.Builder
	switch section {
	case SectionTicketSummary:
		sb.WriteString(c.TicketSummary.Problem)
		sb.WriteString(" ")
		sb.WriteString(c.TicketSummary.Solution)
		sb.WriteString(" ")
		sb.WriteString(c.TicketSummary.Context)
	case SectionAcceptanceCriteria:
		for _, ac := range c.AcceptanceCriteria {
			sb.WriteString(ac.Title)
			sb.WriteString(" ")
			sb.WriteString(ac.Description)
			sb.WriteString(" ")
		}
	case SectionTestCases:
		for _, tc := range c.TestCases {
			sb.WriteString(tc.Text())
			sb.WriteString(" ")
		}
	case SectionConfigurationWarnings:
		for _, w := range c.ConfigurationWarnings {
			sb.WriteString(w.Title)
			sb.WriteString(" ")
			sb.WriteString(w.Message)
			sb.WriteString(" ")
		}
	case SectionMetadata:
		sb.WriteString(c.Metadata.TicketID)
	}
	return strings.ToLower(sb.String())
}

// FullText flattens every canvas section to lowercase text.
func (c *Canvas) FullText() string {
	var sb strings.Builder
	for _, section := range AllCanvasSections {
		sb.WriteString(c.SectionText(section))
		sb.WriteString(" ")
	}
	return strings.ToLower(sb.String())
}
