// Package deps implements the static dependency graph between canvas
// sections. Edges capture which modifications cascade: a change to the
// summary reshapes the criteria and tests derived from it, and a change
// to the criteria reshapes the tests that verify them.
package deps

import (
	"github.com/qa-canvas/canvasd/pkg/models"
)

// edges maps a section to the sections its changes cascade into.
var edges = map[models.CanvasSection][]models.CanvasSection{
	models.SectionTicketSummary: {
		models.SectionAcceptanceCriteria,
		models.SectionTestCases,
	},
	models.SectionAcceptanceCriteria: {
		models.SectionTestCases,
	},
}

// Downstream returns the sections directly cascaded into by a change to
// the given section.
func Downstream(section models.CanvasSection) []models.CanvasSection {
	out := make([]models.CanvasSection, len(edges[section]))
	copy(out, edges[section])
	return out
}

// Analyze computes the transitive closure of the target sections over
// the cascade edges. The result depends only on the targets and the
// current canvas, so repeated analysis of the same inputs is stable.
func Analyze(targets []models.CanvasSection, canvas *models.Canvas) models.DependencyAnalysis {
	affected := make(map[models.CanvasSection]bool, len(targets))
	queue := make([]models.CanvasSection, 0, len(targets))
	for _, t := range targets {
		if !t.IsValid() || affected[t] {
			continue
		}
		affected[t] = true
		queue = append(queue, t)
	}

	cascade := false
	for len(queue) > 0 {
		section := queue[0]
		queue = queue[1:]
		for _, next := range edges[section] {
			if affected[next] {
				continue
			}
			cascade = true
			affected[next] = true
			queue = append(queue, next)
		}
	}

	ordered := make([]models.CanvasSection, 0, len(affected))
	for _, s := range models.AllCanvasSections {
		if affected[s] {
			ordered = append(ordered, s)
		}
	}

	return models.DependencyAnalysis{
		AffectedSections: ordered,
		CascadeRequired:  cascade,
		ConflictRisk:     conflictRisk(ordered, cascade, canvas),
	}
}

// conflictRisk grades how likely a regeneration is to produce content
// that contradicts what the user did not ask to change. Summary edits
// rewrite the premise of everything downstream, so they are high risk.
// Cascading edits are medium. Isolated edits are low, bumped to medium
// when the document is large enough that collateral drift is likely.
func conflictRisk(affected []models.CanvasSection, cascade bool, canvas *models.Canvas) models.RiskLevel {
	for _, s := range affected {
		if s == models.SectionTicketSummary {
			return models.RiskHigh
		}
	}
	if cascade || len(affected) >= 3 {
		return models.RiskMedium
	}
	if canvas != nil && len(canvas.AcceptanceCriteria)+len(canvas.TestCases) > 20 {
		return models.RiskMedium
	}
	return models.RiskLow
}
