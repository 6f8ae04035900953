package schema

import (
	"fmt"

	"github.com/qa-canvas/canvasd/pkg/models"
)

// ParseCanvas strictly decodes and validates a canvas document. Canvases
// are outputs, so unknown fields are rejected.
func ParseCanvas(data []byte) (*models.Canvas, error) {
	var canvas models.Canvas
	if err := decodeStrict(data, &canvas, "canvas"); err != nil {
		return nil, err
	}
	if err := ValidateCanvas(&canvas); err != nil {
		return nil, err
	}
	return &canvas, nil
}

// ValidateCanvas checks structural invariants on an in-memory canvas:
// non-empty summary, unique IDs, valid enums, consistent metadata.
func ValidateCanvas(canvas *models.Canvas) error {
	l := &issueList{}

	if canvas.TicketSummary.Problem == "" {
		l.missing("ticket_summary.problem")
	}
	if canvas.TicketSummary.Solution == "" {
		l.missing("ticket_summary.solution")
	}
	if canvas.TicketSummary.Context == "" {
		l.missing("ticket_summary.context")
	}

	for i, warning := range canvas.ConfigurationWarnings {
		if !warning.Severity.IsValid() {
			l.invalidEnum(fmt.Sprintf("configuration_warnings[%d].severity", i),
				string(warning.Severity), "low", "medium", "high")
		}
		if warning.Title == "" {
			l.missing(fmt.Sprintf("configuration_warnings[%d].title", i))
		}
	}

	seenAC := map[string]bool{}
	for i, ac := range canvas.AcceptanceCriteria {
		path := fmt.Sprintf("acceptance_criteria[%d]", i)
		if ac.ID == "" {
			l.missing(path + ".id")
		} else if seenAC[ac.ID] {
			l.custom(path+".id", fmt.Sprintf("duplicate id %q", ac.ID))
		}
		seenAC[ac.ID] = true
		if ac.Title == "" {
			l.missing(path + ".title")
		}
		if !ac.Priority.IsValid() {
			l.invalidEnum(path+".priority", string(ac.Priority), "must", "should", "could")
		}
	}

	seenTC := map[string]bool{}
	for i, tc := range canvas.TestCases {
		path := fmt.Sprintf("test_cases[%d]", i)
		if tc.ID == "" {
			l.missing(path + ".id")
		} else if seenTC[tc.ID] {
			l.custom(path+".id", fmt.Sprintf("duplicate id %q", tc.ID))
		}
		seenTC[tc.ID] = true
		if !tc.Format.IsValid() {
			l.invalidEnum(path+".format", string(tc.Format), "gherkin", "steps", "table")
			continue
		}
		if !tc.Priority.IsValid() {
			l.invalidEnum(path+".priority", string(tc.Priority), "high", "medium", "low")
		}
		validateTestCaseVariant(l, path, &tc)
	}

	if canvas.Metadata.TicketID == "" {
		l.missing("metadata.ticket_id")
	}
	if canvas.Metadata.DocumentVersion == "" {
		l.missing("metadata.document_version")
	} else if _, _, err := models.ParseVersion(canvas.Metadata.DocumentVersion); err != nil {
		l.invalidString("metadata.document_version", "must be a major.minor version", canvas.Metadata.DocumentVersion)
	}
	if prev := canvas.Metadata.PreviousVersion; prev != "" {
		if !models.VersionGreater(canvas.Metadata.DocumentVersion, prev) {
			l.custom("metadata.document_version",
				fmt.Sprintf("must be strictly greater than previous_version %q", prev))
		}
	}

	if err := l.err("canvas"); err != nil {
		return err
	}
	return nil
}

// validateTestCaseVariant checks that the active variant matches the
// discriminator and carries its required fields.
func validateTestCaseVariant(l *issueList, path string, tc *models.TestCase) {
	switch tc.Format {
	case models.FormatGherkin:
		if tc.Gherkin == nil {
			l.invalidType(path, "format is gherkin but gherkin fields are absent")
			return
		}
		if tc.Gherkin.Scenario == "" {
			l.missing(path + ".scenario")
		}
	case models.FormatSteps:
		if tc.Steps == nil {
			l.invalidType(path, "format is steps but steps fields are absent")
			return
		}
		if tc.Steps.Title == "" {
			l.missing(path + ".title")
		}
		for j, step := range tc.Steps.Steps {
			if step.StepNumber != j+1 {
				l.outOfRange(fmt.Sprintf("%s.steps[%d].step_number", path, j),
					"step numbers must be sequential starting at 1",
					fmt.Sprintf("%d", step.StepNumber))
			}
		}
	case models.FormatTable:
		if tc.Table == nil {
			l.invalidType(path, "format is table but table fields are absent")
			return
		}
		if tc.Table.Title == "" {
			l.missing(path + ".title")
		}
		if tc.Table.ExpectedOutcome == "" {
			l.missing(path + ".expected_outcome")
		}
	}
}
