package prompt

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// Context-size guards. Generation quality degrades long before context
// limits are hit, so the ticket context is trimmed aggressively.
const (
	maxComments       = 3
	maxCommentChars   = 1000
	maxDescriptionLen = 4000
	maxCustomFields   = 10
	maxFieldValueLen  = 200
)

// Messages is a composed system/user prompt pair.
type Messages struct {
	System string
	User   string
}

// Builder builds all prompt text for the generation pipeline.
// Stateless and thread-safe.
type Builder struct{}

// NewBuilder creates a Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// TicketContext flattens a ticket into the shared context block every
// section prompt embeds: headline fields, a bounded slice of custom
// fields, and the last few comments trimmed to size.
func (b *Builder) TicketContext(ticket *models.Ticket, profile *models.QAProfile) string {
	var sb strings.Builder

	sb.WriteString(separator)
	sb.WriteString("\nTICKET ")
	sb.WriteString(ticket.IssueKey)
	sb.WriteString("\n")
	sb.WriteString(separator)
	sb.WriteString("\n")

	writeField(&sb, "Summary", ticket.Summary)
	writeField(&sb, "Type", ticket.IssueType)
	writeField(&sb, "Status", ticket.Status)
	writeField(&sb, "Priority", ticket.Priority)
	writeField(&sb, "Reporter", ticket.Reporter)
	if len(ticket.Components) > 0 {
		writeField(&sb, "Components", strings.Join(ticket.Components, ", "))
	}

	if ticket.Description != "" {
		sb.WriteString("\nDescription:\n")
		sb.WriteString(trim(ticket.Description, maxDescriptionLen))
		sb.WriteString("\n")
	}

	b.writeCustomFields(&sb, ticket)

	if profile == nil || profile.IncludeComments {
		b.writeComments(&sb, ticket)
	}

	return sb.String()
}

func (b *Builder) writeCustomFields(sb *strings.Builder, ticket *models.Ticket) {
	if len(ticket.CustomFields) == 0 {
		return
	}
	names := make([]string, 0, len(ticket.CustomFields))
	for name := range ticket.CustomFields {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxCustomFields {
		names = names[:maxCustomFields]
	}

	sb.WriteString("\nCustom fields:\n")
	for _, name := range names {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(trim(fmt.Sprintf("%v", ticket.CustomFields[name]), maxFieldValueLen))
		sb.WriteString("\n")
	}
}

func (b *Builder) writeComments(sb *strings.Builder, ticket *models.Ticket) {
	if len(ticket.Comments) == 0 {
		return
	}
	comments := ticket.Comments
	if len(comments) > maxComments {
		comments = comments[len(comments)-maxComments:]
	}

	sb.WriteString("\nRecent comments (oldest first):\n")
	for _, comment := range comments {
		sb.WriteString("- ")
		if comment.Author != "" {
			sb.WriteString(comment.Author)
			sb.WriteString(": ")
		}
		sb.WriteString(trim(comment.Body, maxCommentChars))
		sb.WriteString("\n")
	}
}

// categoryGuidance renders the active QA categories as prompt guidance.
func categoryGuidance(profile *models.QAProfile) string {
	active := profile.ActiveCategories()
	if len(active) == 0 {
		return "Cover the functional behavior of the change."
	}
	names := make([]string, len(active))
	for i, c := range active {
		names[i] = string(c)
	}
	return "Focus coverage on these QA categories: " + strings.Join(names, ", ") + "."
}

// TicketSummary builds the prompt pair for the summary section.
func (b *Builder) TicketSummary(ticketContext string) Messages {
	return Messages{
		System: summarySystemPrompt,
		User:   fmt.Sprintf(summaryUserTemplate, ticketContext),
	}
}

// AcceptanceCriteria builds the prompt pair for the criteria section.
func (b *Builder) AcceptanceCriteria(ticketContext string, profile *models.QAProfile) Messages {
	return Messages{
		System: criteriaSystemPrompt,
		User:   fmt.Sprintf(criteriaUserTemplate, ticketContext, categoryGuidance(profile)),
	}
}

// TestCases builds the prompt pair for the test case section in the
// profile's format.
func (b *Builder) TestCases(ticketContext string, profile *models.QAProfile, format models.TestCaseFormat) Messages {
	guidance := categoryGuidance(profile)
	switch format {
	case models.FormatSteps:
		return Messages{System: stepsSystemPrompt, User: fmt.Sprintf(stepsUserTemplate, ticketContext, guidance)}
	case models.FormatTable:
		return Messages{System: tableSystemPrompt, User: fmt.Sprintf(tableUserTemplate, ticketContext, guidance)}
	default:
		return Messages{System: gherkinSystemPrompt, User: fmt.Sprintf(gherkinUserTemplate, ticketContext, guidance)}
	}
}

// ConfigurationWarnings builds the prompt pair for the warnings section.
func (b *Builder) ConfigurationWarnings(ticketContext string, profile *models.QAProfile) Messages {
	return Messages{
		System: warningsSystemPrompt,
		User:   fmt.Sprintf(warningsUserTemplate, ticketContext, describeProfile(profile)),
	}
}

func describeProfile(profile *models.QAProfile) string {
	var sb strings.Builder
	format := profile.TestCaseFormat
	if format == "" {
		format = models.FormatGherkin
	}
	fmt.Fprintf(&sb, "- test case format: %s\n", format)
	active := profile.ActiveCategories()
	if len(active) == 0 {
		sb.WriteString("- active QA categories: none\n")
	} else {
		names := make([]string, len(active))
		for i, c := range active {
			names[i] = string(c)
		}
		fmt.Fprintf(&sb, "- active QA categories: %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&sb, "- include comments: %t\n", profile.IncludeComments)
	return sb.String()
}

// IntentClassification builds the prompt pair for classifying the last
// user message.
func (b *Builder) IntentClassification(messages []models.ChatMessage, canvas *models.Canvas) Messages {
	return Messages{
		System: intentSystemPrompt,
		User:   fmt.Sprintf(intentUserTemplate, conversationExcerpt(messages), canvasOutline(canvas)),
	}
}

// SectionDetection builds the prompt pair for AI section detection.
func (b *Builder) SectionDetection(message string) Messages {
	return Messages{
		System: sectionDetectSystemPrompt,
		User:   fmt.Sprintf(sectionDetectUserTemplate, message),
	}
}

// Clarification builds the prompt pair for clarification questions.
func (b *Builder) Clarification(messages []models.ChatMessage, canvas *models.Canvas) Messages {
	return Messages{
		System: clarificationSystemPrompt,
		User:   fmt.Sprintf(clarificationUserTemplate, conversationExcerpt(messages), canvasOutline(canvas)),
	}
}

// ContextualAnswer builds the prompt pair for informational answers.
func (b *Builder) ContextualAnswer(messages []models.ChatMessage, canvas *models.Canvas, ticketContext string) Messages {
	return Messages{
		System: contextualSystemPrompt,
		User: fmt.Sprintf(contextualUserTemplate,
			conversationExcerpt(messages), canvasJSON(canvas), ticketContext),
	}
}

// Regeneration builds the prompt pair for whole-document regeneration.
func (b *Builder) Regeneration(canvas *models.Canvas, ticketContext, feedback string, preserveStructure bool) Messages {
	instruction := freeStructureInstruction
	if preserveStructure {
		instruction = preserveStructureInstruction
	}
	return Messages{
		System: regenerationSystemPrompt,
		User: fmt.Sprintf(regenerationUserTemplate,
			canvasJSON(canvas), ticketContext, feedback, instruction),
	}
}

// SuggestionEnhancement builds the prompt pair for AI-authored
// suggestions.
func (b *Builder) SuggestionEnhancement(canvas *models.Canvas, focusAreas []models.SuggestionType, userContext string, maxCount int) Messages {
	var guidance strings.Builder
	if len(focusAreas) > 0 {
		names := make([]string, len(focusAreas))
		for i, f := range focusAreas {
			names[i] = string(f)
		}
		guidance.WriteString("Focus on these suggestion types: ")
		guidance.WriteString(strings.Join(names, ", "))
		guidance.WriteString(".\n")
	}
	if userContext != "" {
		guidance.WriteString("Additional context from the user: ")
		guidance.WriteString(userContext)
		guidance.WriteString("\n")
	}
	if guidance.Len() == 0 {
		guidance.WriteString("Look for coverage gaps, missing edge cases, and vague passages.")
	}
	return Messages{
		System: suggestionSystemPrompt,
		User:   fmt.Sprintf(suggestionUserTemplate, canvasJSON(canvas), guidance.String(), maxCount),
	}
}

// conversationExcerpt renders the trailing conversation for prompts.
func conversationExcerpt(messages []models.ChatMessage) string {
	const maxMessages = 10
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}
	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(string(msg.Role))
		sb.WriteString(": ")
		sb.WriteString(trim(msg.Content, maxCommentChars))
		sb.WriteString("\n")
	}
	return sb.String()
}

// canvasOutline renders a compact structural view of the document.
func canvasOutline(canvas *models.Canvas) string {
	if canvas == nil {
		return "(no document yet)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ticket_summary: %s\n", trim(canvas.TicketSummary.Problem, 200))
	fmt.Fprintf(&sb, "acceptance_criteria (%d):\n", len(canvas.AcceptanceCriteria))
	for _, ac := range canvas.AcceptanceCriteria {
		fmt.Fprintf(&sb, "- %s: %s\n", ac.ID, ac.Title)
	}
	fmt.Fprintf(&sb, "test_cases (%d):\n", len(canvas.TestCases))
	for i := range canvas.TestCases {
		tc := &canvas.TestCases[i]
		fmt.Fprintf(&sb, "- %s: %s\n", tc.ID, tc.Title())
	}
	fmt.Fprintf(&sb, "configuration_warnings (%d)\n", len(canvas.ConfigurationWarnings))
	return sb.String()
}

// canvasJSON renders the full document for prompts that revise it.
func canvasJSON(canvas *models.Canvas) string {
	if canvas == nil {
		return "(no document yet)"
	}
	data, err := json.MarshalIndent(canvas, "", "  ")
	if err != nil {
		return canvasOutline(canvas)
	}
	return string(data)
}

func writeField(sb *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	sb.WriteString(name)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}

func trim(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
