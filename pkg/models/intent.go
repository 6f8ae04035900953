package models

// Intent is the closed set of conversational intents the router handles.
type Intent string

const (
	// IntentModifyCanvas routes to dependency analysis + regeneration
	IntentModifyCanvas Intent = "modify_canvas"
	// IntentProvideInformation routes to the contextual response generator
	IntentProvideInformation Intent = "provide_information"
	// IntentAskClarification routes to the clarification generator
	IntentAskClarification Intent = "ask_clarification"
	// IntentOffTopic routes to the deterministic rejection template
	IntentOffTopic Intent = "off_topic"
	// IntentFallback is produced when classification itself fails
	IntentFallback Intent = "fallback"
)

// IsValid checks if the intent is valid
func (i Intent) IsValid() bool {
	switch i {
	case IntentModifyCanvas, IntentProvideInformation, IntentAskClarification,
		IntentOffTopic, IntentFallback:
		return true
	default:
		return false
	}
}

// CanvasSection names one of the five canvas sections.
type CanvasSection string

const (
	SectionTicketSummary         CanvasSection = "ticket_summary"
	SectionAcceptanceCriteria    CanvasSection = "acceptance_criteria"
	SectionTestCases             CanvasSection = "test_cases"
	SectionConfigurationWarnings CanvasSection = "configuration_warnings"
	SectionMetadata              CanvasSection = "metadata"
)

// AllCanvasSections lists sections in canonical assembly order.
var AllCanvasSections = []CanvasSection{
	SectionTicketSummary,
	SectionConfigurationWarnings,
	SectionAcceptanceCriteria,
	SectionTestCases,
	SectionMetadata,
}

// IsValid checks if the canvas section is valid
func (s CanvasSection) IsValid() bool {
	switch s {
	case SectionTicketSummary, SectionAcceptanceCriteria, SectionTestCases,
		SectionConfigurationWarnings, SectionMetadata:
		return true
	default:
		return false
	}
}

// IntentClassification is the classifier's verdict on a user message.
type IntentClassification struct {
	Intent                Intent          `json:"intent"`
	Confidence            float64         `json:"confidence"`
	TargetSections        []CanvasSection `json:"target_sections"`
	Keywords              []string        `json:"keywords"`
	Reasoning             string          `json:"reasoning"`
	ShouldModifyCanvas    bool            `json:"should_modify_canvas"`
	RequiresClarification bool            `json:"requires_clarification"`
}

// DetectionMethod records how target sections were detected.
type DetectionMethod string

const (
	DetectionKeyword DetectionMethod = "keyword"
	DetectionAI      DetectionMethod = "ai"
	DetectionHybrid  DetectionMethod = "hybrid"
)

// SectionDetection is the hybrid detector's output. Primary targets are
// high-confidence matches; secondary targets are weaker signals.
type SectionDetection struct {
	PrimaryTargets   []CanvasSection `json:"primary_targets"`
	SecondaryTargets []CanvasSection `json:"secondary_targets"`
	Keywords         []string        `json:"keywords"`
	Confidence       float64         `json:"confidence"`
	Method           DetectionMethod `json:"method"`
}

// RiskLevel grades conflict risk in dependency analysis.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DependencyAnalysis records which sections a modification touches and
// whether the change cascades along the static section graph.
type DependencyAnalysis struct {
	AffectedSections []CanvasSection `json:"affected_sections"`
	CascadeRequired  bool            `json:"cascade_required"`
	ConflictRisk     RiskLevel       `json:"conflict_risk"`
}

// ClarificationQuestion is one question produced for ambiguous requests.
type ClarificationQuestion struct {
	Question      string        `json:"question"`
	Category      string        `json:"category"`
	TargetSection CanvasSection `json:"target_section"`
	Priority      string        `json:"priority"`
}
