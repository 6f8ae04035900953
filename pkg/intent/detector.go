package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/qa-canvas/canvasd/pkg/llm"
	"github.com/qa-canvas/canvasd/pkg/models"
)

// Per-section score thresholds for the keyword pass. A phrase match is
// worth matchWeight; two or more matches make a section a primary
// target.
const (
	matchWeight        = 0.4
	primaryThreshold   = 0.7
	secondaryThreshold = 0.4
	aiFallbackBelow    = 0.6
)

// DetectSections resolves which canvas sections a message targets. The
// keyword pass runs first; the generative pass only runs when keywords
// are inconclusive (no primary target, or overall confidence below the
// fallback threshold).
func (e *Engine) DetectSections(ctx context.Context, requestID, message string) models.SectionDetection {
	detection := detectByKeywords(message)
	if len(detection.PrimaryTargets) > 0 && detection.Confidence >= aiFallbackBelow {
		return detection
	}

	aiSections, aiConfidence, err := e.detectWithModel(ctx, requestID, message)
	if err != nil {
		slog.Debug("AI section detection unavailable, keeping keyword result",
			"request_id", requestID, "error", err)
		return detection
	}

	merged := mergeDetections(detection, aiSections, aiConfidence)
	return merged
}

// detectByKeywords scores every section against the bilingual lexicon.
func detectByKeywords(message string) models.SectionDetection {
	lower := strings.ToLower(message)
	detection := models.SectionDetection{Method: models.DetectionKeyword}

	best := 0.0
	for _, section := range models.AllCanvasSections {
		score := 0.0
		for _, phrase := range sectionLexicon[section] {
			if strings.Contains(lower, phrase) {
				score += matchWeight
				detection.Keywords = append(detection.Keywords, phrase)
			}
		}
		if score > 1 {
			score = 1
		}
		switch {
		case score >= primaryThreshold:
			detection.PrimaryTargets = append(detection.PrimaryTargets, section)
		case score >= secondaryThreshold:
			detection.SecondaryTargets = append(detection.SecondaryTargets, section)
		}
		if score > best {
			best = score
		}
	}
	detection.Confidence = best
	return detection
}

// detectWithModel asks the model which sections a message targets.
func (e *Engine) detectWithModel(ctx context.Context, requestID, message string) ([]models.CanvasSection, float64, error) {
	msgs := e.prompts.SectionDetection(message)
	temp := tempClassification
	raw, err := e.client.GenerateObject(ctx, &llm.Request{
		RequestID:   requestID,
		Operation:   "detect_sections",
		System:      msgs.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: msgs.User}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, 0, err
	}

	var payload struct {
		Sections   []models.CanvasSection `json:"sections"`
		Confidence float64                `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, 0, err
	}
	valid := payload.Sections[:0]
	for _, s := range payload.Sections {
		if s.IsValid() {
			valid = append(valid, s)
		}
	}
	return valid, clamp01(payload.Confidence), nil
}

// mergeDetections folds the generative verdict into the keyword one.
// Model-confirmed sections become primary targets; the method records
// whether both passes contributed.
func mergeDetections(keyword models.SectionDetection, aiSections []models.CanvasSection, aiConfidence float64) models.SectionDetection {
	merged := keyword
	if len(keyword.Keywords) > 0 {
		merged.Method = models.DetectionHybrid
	} else {
		merged.Method = models.DetectionAI
	}

	present := map[models.CanvasSection]bool{}
	for _, s := range merged.PrimaryTargets {
		present[s] = true
	}
	for _, s := range aiSections {
		if !present[s] {
			merged.PrimaryTargets = append(merged.PrimaryTargets, s)
			present[s] = true
		}
	}
	merged.SecondaryTargets = without(merged.SecondaryTargets, present)

	if aiConfidence > merged.Confidence {
		merged.Confidence = aiConfidence
	}
	return merged
}

func without(sections []models.CanvasSection, drop map[models.CanvasSection]bool) []models.CanvasSection {
	out := sections[:0]
	for _, s := range sections {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
