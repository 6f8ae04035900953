package api

import (
	"fmt"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/intent"
	"github.com/qa-canvas/canvasd/pkg/models"
)

// UpdateCanvasResponse is the JSON body for POST /api/update-canvas.
// Exactly the fields matching Type are populated.
type UpdateCanvasResponse struct {
	Type           intent.ResponseType `json:"type"`
	ChangesSummary string              `json:"changes_summary,omitempty"`

	// modification
	UpdatedDocument *models.Canvas             `json:"updated_document,omitempty"`
	TargetSections  []models.CanvasSection     `json:"target_sections,omitempty"`
	Changes         []models.CanvasChange      `json:"changes,omitempty"`
	Dependency      *models.DependencyAnalysis `json:"dependency_analysis,omitempty"`

	// clarification
	Questions []models.ClarificationQuestion `json:"questions,omitempty"`
	SessionID string                         `json:"session_id,omitempty"`

	// information
	Response           string                 `json:"response,omitempty"`
	Citations          []models.CanvasSection `json:"citations,omitempty"`
	SuggestedFollowUps []string               `json:"suggested_follow_ups,omitempty"`
}

// changesSummary renders a one-line human summary of a canvas diff.
func changesSummary(changes []models.CanvasChange) string {
	counts := map[models.ChangeType]int{}
	for _, ch := range changes {
		counts[ch.ChangeType]++
	}
	if counts[models.ChangeAdded]+counts[models.ChangeModified]+counts[models.ChangeRemoved] == 0 {
		return "No changes were needed."
	}

	var parts []string
	if n := counts[models.ChangeAdded]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d added", n))
	}
	if n := counts[models.ChangeModified]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d modified", n))
	}
	if n := counts[models.ChangeRemoved]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d removed", n))
	}
	return "Updated the document: " + strings.Join(parts, ", ") + "."
}
