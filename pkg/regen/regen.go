// Package regen rewrites a canvas from user feedback. The whole
// document is regenerated in one model call, validated, diffed against
// the previous version, and re-stamped with bumped version metadata.
// The previous canvas is never mutated.
package regen

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/qa-canvas/canvasd/pkg/apperr"
	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
	"github.com/qa-canvas/canvasd/pkg/prompt"
	"github.com/qa-canvas/canvasd/pkg/schema"
	"github.com/qa-canvas/canvasd/pkg/uncertainty"
)

// tempRegeneration balances fidelity to the preserved sections against
// freedom in the rewritten ones.
const tempRegeneration = 0.3

// Generator is the slice of the provider gateway the regenerator uses.
type Generator interface {
	GenerateText(ctx context.Context, req *llm.Request) (*llm.Response, error)
}

// Options control one regeneration run.
type Options struct {
	// PreserveStructure keeps entry IDs stable for content the feedback
	// does not touch.
	PreserveStructure bool
	// MajorBump moves to the next whole document version.
	MajorBump bool
}

// Result is a completed regeneration: the new document and the diff
// against its predecessor.
type Result struct {
	Canvas  *models.Canvas        `json:"canvas"`
	Changes []models.CanvasChange `json:"changes"`
}

// Regenerator rewrites canvases.
type Regenerator struct {
	gen     Generator
	prompts *prompt.Builder
	now     func() time.Time
}

// New creates a Regenerator on top of a text generator.
func New(gen Generator) *Regenerator {
	return &Regenerator{
		gen:     gen,
		prompts: prompt.NewBuilder(),
		now:     time.Now,
	}
}

// Regenerate produces a new canvas version incorporating the feedback.
// On failure the original canvas is returned alongside the error so
// callers can keep serving the last good document.
func (r *Regenerator) Regenerate(ctx context.Context, requestID string, current *models.Canvas, ticketContext, feedback string, opts Options) (*Result, error) {
	format := documentFormat(current)
	msgs := r.prompts.Regeneration(current, ticketContext, feedback, opts.PreserveStructure)

	temp := tempRegeneration
	resp, err := r.gen.GenerateText(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   "regenerate_canvas",
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})
	if err != nil {
		return &Result{Canvas: current}, regenerationFailed(requestID, err)
	}

	raw, ok := schema.ExtractJSON(resp.Text)
	if !ok {
		return &Result{Canvas: current}, regenerationFailed(requestID,
			apperr.New(apperr.KindAIGeneration, "model response did not contain JSON"))
	}
	next, err := schema.ParseRegeneratedSections([]byte(raw), format)
	if err != nil {
		return &Result{Canvas: current}, regenerationFailed(requestID, err)
	}

	assignIDs(next)
	next.Metadata = nextMetadata(current, feedback, resp.Model, opts.MajorBump, r.now())
	next.Metadata.WordCount = next.WordCount()

	return &Result{
		Canvas:  next,
		Changes: Diff(current, next),
	}, nil
}

// DeriveReason maps feedback keywords to a human-readable regeneration
// reason for the document metadata. Keywords match whole words only,
// so "address" is not an addition and "fixture" is not a fix.
func DeriveReason(feedback string) string {
	lower := strings.ToLower(feedback)
	has := func(words ...string) bool {
		for _, w := range words {
			if uncertainty.ContainsWord(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("add", "more"):
		return "Content addition"
	case has("change", "update", "modify"):
		return "Content modification"
	case has("improve", "better"):
		return "Quality improvement"
	case has("fix", "correct"):
		return "Error correction"
	default:
		return "User feedback incorporation"
	}
}

// Diff compares two canvas versions entry by entry. Entries are matched
// positionally, so a preserved prefix diffs as preserved even though
// IDs are reassigned. Pure function of its inputs.
func Diff(old, next *models.Canvas) []models.CanvasChange {
	var changes []models.CanvasChange

	changes = append(changes, diffSummary(old, next))
	changes = append(changes, diffWarnings(old, next))
	changes = append(changes, diffCriteria(old, next)...)
	changes = append(changes, diffTestCases(old, next)...)

	return changes
}

func diffSummary(old, next *models.Canvas) models.CanvasChange {
	if old.TicketSummary == next.TicketSummary {
		return models.CanvasChange{
			Section:     models.SectionTicketSummary,
			ChangeType:  models.ChangePreserved,
			Description: "Ticket summary unchanged",
		}
	}
	return models.CanvasChange{
		Section:     models.SectionTicketSummary,
		ChangeType:  models.ChangeModified,
		Description: "Ticket summary rewritten",
		OldValue:    old.TicketSummary.Problem,
		NewValue:    next.TicketSummary.Problem,
	}
}

func diffWarnings(old, next *models.Canvas) models.CanvasChange {
	oldTitles := warningTitles(old)
	newTitles := warningTitles(next)
	if oldTitles == newTitles {
		return models.CanvasChange{
			Section:     models.SectionConfigurationWarnings,
			ChangeType:  models.ChangePreserved,
			Description: "Configuration warnings unchanged",
		}
	}
	return models.CanvasChange{
		Section:     models.SectionConfigurationWarnings,
		ChangeType:  models.ChangeModified,
		Description: "Configuration warnings revised",
		OldValue:    oldTitles,
		NewValue:    newTitles,
	}
}

func warningTitles(c *models.Canvas) string {
	titles := make([]string, len(c.ConfigurationWarnings))
	for i, w := range c.ConfigurationWarnings {
		titles[i] = w.Title
	}
	return strings.Join(titles, "; ")
}

func diffCriteria(old, next *models.Canvas) []models.CanvasChange {
	var changes []models.CanvasChange
	common := min(len(old.AcceptanceCriteria), len(next.AcceptanceCriteria))

	for i := 0; i < common; i++ {
		o, n := old.AcceptanceCriteria[i], next.AcceptanceCriteria[i]
		if o.Title == n.Title && o.Description == n.Description && o.Priority == n.Priority {
			changes = append(changes, models.CanvasChange{
				Section:     models.SectionAcceptanceCriteria,
				ChangeType:  models.ChangePreserved,
				Description: n.ID + ": " + n.Title,
			})
			continue
		}
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionAcceptanceCriteria,
			ChangeType:  models.ChangeModified,
			Description: n.ID + ": " + n.Title,
			OldValue:    o.Title,
			NewValue:    n.Title,
		})
	}
	for i := common; i < len(old.AcceptanceCriteria); i++ {
		o := old.AcceptanceCriteria[i]
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionAcceptanceCriteria,
			ChangeType:  models.ChangeRemoved,
			Description: o.ID + ": " + o.Title,
			OldValue:    o.Title,
		})
	}
	for i := common; i < len(next.AcceptanceCriteria); i++ {
		n := next.AcceptanceCriteria[i]
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionAcceptanceCriteria,
			ChangeType:  models.ChangeAdded,
			Description: n.ID + ": " + n.Title,
			NewValue:    n.Title,
		})
	}
	return changes
}

func diffTestCases(old, next *models.Canvas) []models.CanvasChange {
	var changes []models.CanvasChange
	common := min(len(old.TestCases), len(next.TestCases))

	for i := 0; i < common; i++ {
		o, n := &old.TestCases[i], &next.TestCases[i]
		if o.Text() == n.Text() {
			changes = append(changes, models.CanvasChange{
				Section:     models.SectionTestCases,
				ChangeType:  models.ChangePreserved,
				Description: n.ID + ": " + n.Title(),
			})
			continue
		}
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionTestCases,
			ChangeType:  models.ChangeModified,
			Description: n.ID + ": " + n.Title(),
			OldValue:    o.Title(),
			NewValue:    n.Title(),
		})
	}
	for i := common; i < len(old.TestCases); i++ {
		o := &old.TestCases[i]
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionTestCases,
			ChangeType:  models.ChangeRemoved,
			Description: o.ID + ": " + o.Title(),
			OldValue:    o.Title(),
		})
	}
	for i := common; i < len(next.TestCases); i++ {
		n := &next.TestCases[i]
		changes = append(changes, models.CanvasChange{
			Section:     models.SectionTestCases,
			ChangeType:  models.ChangeAdded,
			Description: n.ID + ": " + n.Title(),
			NewValue:    n.Title(),
		})
	}
	return changes
}

// documentFormat reads the test case format off the current document,
// falling back to the profile and then to gherkin.
func documentFormat(canvas *models.Canvas) models.TestCaseFormat {
	if len(canvas.TestCases) > 0 && canvas.TestCases[0].Format.IsValid() {
		return canvas.TestCases[0].Format
	}
	if canvas.Metadata.QAProfile.TestCaseFormat.IsValid() {
		return canvas.Metadata.QAProfile.TestCaseFormat
	}
	return models.FormatGherkin
}

func assignIDs(canvas *models.Canvas) {
	for i := range canvas.AcceptanceCriteria {
		canvas.AcceptanceCriteria[i].ID = acID(i)
	}
	for i := range canvas.TestCases {
		canvas.TestCases[i].ID = tcID(i)
	}
}

func acID(i int) string { return "ac-" + strconv.Itoa(i+1) }
func tcID(i int) string { return "tc-" + strconv.Itoa(i+1) }

func nextMetadata(current *models.Canvas, feedback, model string, majorBump bool, now time.Time) models.CanvasMetadata {
	meta := current.Metadata
	meta.PreviousVersion = current.Metadata.DocumentVersion
	meta.DocumentVersion = models.BumpVersion(current.Metadata.DocumentVersion, majorBump)
	meta.RegenerationReason = DeriveReason(feedback)
	meta.GeneratedAt = now.UTC()
	meta.IsPartialResult = false
	meta.GenerationTimeMS = 0
	if model != "" {
		meta.AIModel = model
	}
	return meta
}

func regenerationFailed(requestID string, err error) error {
	appErr := apperr.Wrap(apperr.KindAIGeneration, "canvas regeneration failed", err)
	appErr.RequestID = requestID
	appErr.Suggestions = append(appErr.Suggestions,
		"The previous document version is still available.",
		"Retry the request or rephrase the feedback.")
	return appErr
}
