// Package analyzer turns a ticket and a QA profile into a canvas. Four
// section generations run in parallel against the provider gateway;
// sections that fail after the gateway's retries are replaced with
// synthetic placeholders so the caller always gets a valid document.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/schema"
	"github.com/qa-canvas/canvasd/pkg/uncertainty"
)

// Section generation temperatures. Summary and warnings want the most
// deterministic output; test cases get room to vary.
const (
	tempSummary   = 0.1
	tempCriteria  = 0.2
	tempTestCases = 0.3
	tempWarnings  = 0.1
)

// maxConcurrentSections bounds the per-request generation fan-out.
const maxConcurrentSections = 8

// initialVersion is the document version assigned by first analysis.
const initialVersion = "1.0"

// Generator is the slice of the provider gateway the analyzer uses.
type Generator interface {
	GenerateText(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// Analyzer produces canvases from tickets.
type Analyzer struct {
	gen     Generator
	prompts *prompt.Builder
	now     func() time.Time
}

// New creates an Analyzer on top of a text generator.
func New(gen Generator) *Analyzer {
	return &Analyzer{
		gen:     gen,
		prompts: prompt.NewBuilder(),
		now:     time.Now,
	}
}

// sectionResults collects the four parallel generations. Each goroutine
// writes only its own field group, so no lock is needed.
type sectionResults struct {
	summary    *models.TicketSummary
	summaryErr error

	criteria    []models.AcceptanceCriterion
	criteriaErr error

	cases    []models.TestCase
	casesErr error

	warnings    []models.ConfigurationWarning
	warningsErr error

	model string
}

// Analyze builds a canvas for the ticket. It never fails outright:
// sections that cannot be generated are synthesized, flagged with
// warnings, and the document is marked as a partial result. The only
// error returned is context cancellation.
func (a *Analyzer) Analyze(ctx context.Context, requestID string, ticket *models.Ticket, profile *models.QAProfile) (*models.Canvas, error) {
	start := a.now()

	format := profile.TestCaseFormat
	if format == "" {
		format = models.FormatGherkin
	}
	assumptions := uncertainty.DetectAssumptions(profile, "")
	baseContext := a.prompts.TicketContext(ticket, profile)

	results := &sectionResults{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSections)

	g.Go(func() error {
		msgs := a.prompts.TicketSummary(baseContext)
		raw, model, err := a.generate(gctx, requestID, "generate_ticket_summary", msgs, tempSummary)
		if err == nil {
			results.summary, err = schema.ParseTicketSummary([]byte(raw))
		}
		results.summaryErr = err
		if model != "" {
			results.model = model
		}
		return nil
	})
	g.Go(func() error {
		msgs := a.prompts.AcceptanceCriteria(baseContext, profile)
		raw, _, err := a.generate(gctx, requestID, "generate_acceptance_criteria", msgs, tempCriteria)
		if err == nil {
			results.criteria, err = schema.ParseAcceptanceCriteria([]byte(raw))
		}
		results.criteriaErr = err
		return nil
	})
	g.Go(func() error {
		msgs := a.prompts.TestCases(baseContext, profile, format)
		raw, _, err := a.generate(gctx, requestID, "generate_test_cases", msgs, tempTestCases)
		if err == nil {
			results.cases, err = schema.ParseTestCases([]byte(raw), format)
		}
		results.casesErr = err
		return nil
	})
	g.Go(func() error {
		msgs := a.prompts.ConfigurationWarnings(baseContext, profile)
		raw, _, err := a.generate(gctx, requestID, "generate_configuration_warnings", msgs, tempWarnings)
		if err == nil {
			results.warnings, err = schema.ParseConfigurationWarnings([]byte(raw))
		}
		results.warningsErr = err
		return nil
	})

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas := a.assemble(ticket, profile, format, assumptions, results)
	canvas.Metadata.GenerationTimeMS = a.now().Sub(start).Milliseconds()
	return canvas, nil
}

// generate runs one section prompt and extracts the JSON payload from
// the model text.
func (a *Analyzer) generate(ctx context.Context, requestID, operation string, msgs prompt.Messages, temperature float64) (string, string, error) {
	temp := temperature
	resp, err := a.gen.GenerateText(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   operation,
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})
	if err != nil {
		return "", "", err
	}
	raw, ok := schema.ExtractJSON(resp.Text)
	if !ok {
		return "", resp.Model, fmt.Errorf("%s: model response did not contain JSON", operation)
	}
	return raw, resp.Model, nil
}

// assemble builds the final document in fixed section order, replacing
// failed sections with placeholders and assigning positional IDs.
func (a *Analyzer) assemble(ticket *models.Ticket, profile *models.QAProfile, format models.TestCaseFormat, assumptions []uncertainty.Assumption, results *sectionResults) *models.Canvas {
	canvas := &models.Canvas{}
	var degraded []models.CanvasSection

	if results.summaryErr == nil {
		canvas.TicketSummary = *results.summary
	} else {
		canvas.TicketSummary = syntheticSummary(ticket)
		degraded = append(degraded, models.SectionTicketSummary)
	}

	canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, uncertainty.Warnings(assumptions)...)
	if results.warningsErr == nil {
		canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, results.warnings...)
	} else {
		degraded = append(degraded, models.SectionConfigurationWarnings)
	}

	if results.criteriaErr == nil {
		canvas.AcceptanceCriteria = results.criteria
	} else {
		canvas.AcceptanceCriteria = syntheticCriteria()
		degraded = append(degraded, models.SectionAcceptanceCriteria)
	}
	for i := range canvas.AcceptanceCriteria {
		canvas.AcceptanceCriteria[i].ID = fmt.Sprintf("ac-%d", i+1)
	}

	if results.casesErr == nil {
		canvas.TestCases = results.cases
	} else {
		canvas.TestCases = syntheticTestCases(format)
		degraded = append(degraded, models.SectionTestCases)
	}
	for i := range canvas.TestCases {
		canvas.TestCases[i].ID = fmt.Sprintf("tc-%d", i+1)
	}

	completed := make([]models.CanvasSection, 0, len(models.AllCanvasSections))
	failed := make(map[models.CanvasSection]bool, len(degraded))
	for _, s := range degraded {
		failed[s] = true
	}
	for _, s := range models.AllCanvasSections {
		if s != models.SectionMetadata && !failed[s] {
			completed = append(completed, s)
		}
	}
	partial := uncertainty.NewPartialResult(completed, degraded)

	for _, section := range partial.FailedSections {
		canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, degradationWarning(section, results))
	}
	if len(partial.FailedSections) == len(models.AllCanvasSections)-1 {
		canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, models.ConfigurationWarning{
			Type:           "generation_failed",
			Title:          "Document generation failed",
			Message:        "No section could be generated; every section below is a placeholder.",
			Recommendation: "Check provider health and regenerate the document.",
			Severity:       models.SeverityHigh,
		})
	}
	if !profile.HasActiveCategory() {
		canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, models.ConfigurationWarning{
			Type:           "no_active_categories",
			Title:          "No QA categories enabled",
			Message:        "The QA profile enables no category, so the generated coverage has no explicit focus.",
			Recommendation: "Enable at least one QA category in the profile and regenerate the document.",
			Severity:       models.SeverityMedium,
		})
	}
	if !ticket.HasContent() {
		canvas.ConfigurationWarnings = append(canvas.ConfigurationWarnings, models.ConfigurationWarning{
			Type:           "empty_ticket",
			Title:          "Ticket has no analyzable content",
			Message:        "Both the ticket summary and description are empty, so the generated sections are not grounded in ticket text.",
			Recommendation: "Fill in the ticket summary or description and analyze again.",
			Severity:       models.SeverityHigh,
		})
	}

	canvas.Metadata = models.CanvasMetadata{
		TicketID:        ticket.IssueKey,
		QAProfile:       *profile,
		GeneratedAt:     a.now().UTC(),
		DocumentVersion: initialVersion,
		AIModel:         results.model,
		IsPartialResult: len(partial.FailedSections) > 0 || !ticket.HasContent(),
	}
	canvas.Metadata.WordCount = canvas.WordCount()
	return canvas
}

// degradationWarning explains one failed section generation.
func degradationWarning(section models.CanvasSection, results *sectionResults) models.ConfigurationWarning {
	var label string
	var err error
	switch section {
	case models.SectionTicketSummary:
		label, err = "ticket summary generation", results.summaryErr
	case models.SectionAcceptanceCriteria:
		label, err = "acceptance criteria generation", results.criteriaErr
	case models.SectionTestCases:
		label, err = "test cases generation", results.casesErr
	case models.SectionConfigurationWarnings:
		label, err = "configuration warnings generation", results.warningsErr
	}
	severity := models.SeverityHigh
	if section == models.SectionConfigurationWarnings {
		severity = models.SeverityMedium
	}
	return models.ConfigurationWarning{
		Type:           "section_degraded",
		Title:          fmt.Sprintf("Placeholder content: %s failed", label),
		Message:        fmt.Sprintf("The %s failed: %v. The section content is a placeholder.", label, err),
		Recommendation: "Regenerate the document once the AI provider recovers.",
		Severity:       severity,
	}
}

func syntheticSummary(ticket *models.Ticket) models.TicketSummary {
	problem := ticket.Summary
	if problem == "" {
		problem = "Summary generation is unavailable and the ticket carries no summary text."
	}
	return models.TicketSummary{
		Problem:  problem,
		Solution: "Automatic summary generation failed for this document.",
		Context:  "This is placeholder content. Regenerate the document to replace it.",
	}
}

func syntheticCriteria() []models.AcceptanceCriterion {
	return []models.AcceptanceCriterion{{
		Title:       "Placeholder: acceptance criteria generation failed",
		Description: "Acceptance criteria could not be generated. Regenerate the document to replace this placeholder.",
		Priority:    models.PriorityMust,
		Category:    "functional",
		Testable:    false,
	}}
}

func syntheticTestCases(format models.TestCaseFormat) []models.TestCase {
	tc := models.TestCase{
		Format:   format,
		Category: "functional",
		Priority: models.TestPriorityHigh,
	}
	const title = "Placeholder: test case generation failed"
	const body = "Test cases could not be generated. Regenerate the document to replace this placeholder."
	switch format {
	case models.FormatSteps:
		tc.Steps = &models.StepsTestCase{
			Title:     title,
			Objective: body,
			Steps: []models.TestStep{
				{StepNumber: 1, Action: "Regenerate the document", ExpectedResult: "Real test cases replace this placeholder"},
			},
		}
	case models.FormatTable:
		tc.Table = &models.TableTestCase{
			Title:           title,
			Description:     body,
			ExpectedOutcome: "Real test cases replace this placeholder after regeneration",
		}
	default:
		tc.Format = models.FormatGherkin
		tc.Gherkin = &models.GherkinTestCase{
			Scenario: title,
			Given:    []string{"test case generation failed"},
			When:     []string{"the document is regenerated"},
			Then:     []string{"real test cases replace this placeholder"},
		}
	}
	return []models.TestCase{tc}
}
