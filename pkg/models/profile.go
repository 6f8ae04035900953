package models

// TestCaseFormat selects the shape test cases are generated in.
type TestCaseFormat string

const (
	// FormatGherkin produces Given/When/Then scenarios
	FormatGherkin TestCaseFormat = "gherkin"
	// FormatSteps produces numbered step-by-step procedures
	FormatSteps TestCaseFormat = "steps"
	// FormatTable produces compact tabular descriptions
	FormatTable TestCaseFormat = "table"
)

// IsValid checks if the test case format is valid
func (f TestCaseFormat) IsValid() bool {
	switch f {
	case FormatGherkin, FormatSteps, FormatTable:
		return true
	default:
		return false
	}
}

// QACategory is one of the closed set of QA coverage categories.
type QACategory string

const (
	CategoryFunctional    QACategory = "functional"
	CategoryUI            QACategory = "ui"
	CategoryUX            QACategory = "ux"
	CategoryNegative      QACategory = "negative"
	CategoryAPI           QACategory = "api"
	CategoryDatabase      QACategory = "database"
	CategoryPerformance   QACategory = "performance"
	CategorySecurity      QACategory = "security"
	CategoryMobile        QACategory = "mobile"
	CategoryAccessibility QACategory = "accessibility"
)

// AllQACategories lists every category in canonical order.
// Used for deterministic iteration (Go map order is random).
var AllQACategories = []QACategory{
	CategoryFunctional,
	CategoryUI,
	CategoryUX,
	CategoryNegative,
	CategoryAPI,
	CategoryDatabase,
	CategoryPerformance,
	CategorySecurity,
	CategoryMobile,
	CategoryAccessibility,
}

// IsValid checks if the QA category is valid
func (c QACategory) IsValid() bool {
	for _, known := range AllQACategories {
		if c == known {
			return true
		}
	}
	return false
}

// QAProfile is the immutable analyzer configuration.
type QAProfile struct {
	TestCaseFormat  TestCaseFormat      `json:"test_case_format"`
	QACategories    map[QACategory]bool `json:"qa_categories"`
	IncludeComments bool                `json:"include_comments,omitempty"`
	IncludeImages   bool                `json:"include_images,omitempty"`
	OperationMode   string              `json:"operation_mode,omitempty"`
}

// ActiveCategories returns the enabled categories in canonical order.
func (p *QAProfile) ActiveCategories() []QACategory {
	var active []QACategory
	for _, c := range AllQACategories {
		if p.QACategories[c] {
			active = append(active, c)
		}
	}
	return active
}

// HasActiveCategory reports whether at least one category is enabled.
// The analyzer emits a configuration warning when this is false.
func (p *QAProfile) HasActiveCategory() bool {
	for _, enabled := range p.QACategories {
		if enabled {
			return true
		}
	}
	return false
}
