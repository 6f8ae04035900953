package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TestCasePriority ranks test cases.
type TestCasePriority string

const (
	TestPriorityHigh   TestCasePriority = "high"
	TestPriorityMedium TestCasePriority = "medium"
	TestPriorityLow    TestCasePriority = "low"
)

// IsValid checks if the test case priority is valid
func (p TestCasePriority) IsValid() bool {
	return p == TestPriorityHigh || p == TestPriorityMedium || p == TestPriorityLow
}

// TestCase is a tagged variant discriminated by Format. Exactly one of
// Gherkin, Steps, or Table is set, matching Format. The JSON encoding is
// flat: the envelope fields and the variant fields share one object.
type TestCase struct {
	ID            string           `json:"-"`
	Format        TestCaseFormat   `json:"-"`
	Category      string           `json:"-"`
	Priority      TestCasePriority `json:"-"`
	EstimatedTime string           `json:"-"`

	Gherkin *GherkinTestCase `json:"-"`
	Steps   *StepsTestCase   `json:"-"`
	Table   *TableTestCase   `json:"-"`
}

// GherkinTestCase is the Given/When/Then variant.
type GherkinTestCase struct {
	Scenario string   `json:"scenario"`
	Given    []string `json:"given"`
	When     []string `json:"when"`
	Then     []string `json:"then"`
	Tags     []string `json:"tags"`
}

// StepsTestCase is the numbered-procedure variant.
type StepsTestCase struct {
	Title          string     `json:"title"`
	Objective      string     `json:"objective"`
	Preconditions  []string   `json:"preconditions"`
	Steps          []TestStep `json:"steps"`
	Postconditions []string   `json:"postconditions"`
}

// TestStep is a single numbered step within a StepsTestCase.
type TestStep struct {
	StepNumber     int    `json:"step_number"`
	Action         string `json:"action"`
	ExpectedResult string `json:"expected_result"`
	Notes          string `json:"notes,omitempty"`
}

// TableTestCase is the compact tabular variant.
type TableTestCase struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	ExpectedOutcome string `json:"expected_outcome"`
	Notes           string `json:"notes,omitempty"`
}

// testCaseEnvelope holds the common fields shared by all variants.
type testCaseEnvelope struct {
	ID            string           `json:"id"`
	Format        TestCaseFormat   `json:"format"`
	Category      string           `json:"category"`
	Priority      TestCasePriority `json:"priority"`
	EstimatedTime string           `json:"estimated_time,omitempty"`
}

// MarshalJSON flattens the envelope and the active variant into one object.
func (tc TestCase) MarshalJSON() ([]byte, error) {
	fields := map[string]json.RawMessage{}

	merge := func(v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return err
		}
		for k, val := range m {
			fields[k] = val
		}
		return nil
	}

	if err := merge(testCaseEnvelope{
		ID:            tc.ID,
		Format:        tc.Format,
		Category:      tc.Category,
		Priority:      tc.Priority,
		EstimatedTime: tc.EstimatedTime,
	}); err != nil {
		return nil, err
	}

	switch tc.Format {
	case FormatGherkin:
		if tc.Gherkin == nil {
			return nil, fmt.Errorf("test case %s: format is gherkin but gherkin variant is nil", tc.ID)
		}
		if err := merge(tc.Gherkin); err != nil {
			return nil, err
		}
	case FormatSteps:
		if tc.Steps == nil {
			return nil, fmt.Errorf("test case %s: format is steps but steps variant is nil", tc.ID)
		}
		if err := merge(tc.Steps); err != nil {
			return nil, err
		}
	case FormatTable:
		if tc.Table == nil {
			return nil, fmt.Errorf("test case %s: format is table but table variant is nil", tc.ID)
		}
		if err := merge(tc.Table); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("test case %s: unknown format %q", tc.ID, tc.Format)
	}

	return json.Marshal(fields)
}

// UnmarshalJSON dispatches on the format discriminator.
func (tc *TestCase) UnmarshalJSON(data []byte) error {
	var env testCaseEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	tc.ID = env.ID
	tc.Format = env.Format
	tc.Category = env.Category
	tc.Priority = env.Priority
	tc.EstimatedTime = env.EstimatedTime
	tc.Gherkin, tc.Steps, tc.Table = nil, nil, nil

	switch env.Format {
	case FormatGherkin:
		variant := &GherkinTestCase{}
		if err := json.Unmarshal(data, variant); err != nil {
			return err
		}
		tc.Gherkin = variant
	case FormatSteps:
		variant := &StepsTestCase{}
		if err := json.Unmarshal(data, variant); err != nil {
			return err
		}
		tc.Steps = variant
	case FormatTable:
		variant := &TableTestCase{}
		if err := json.Unmarshal(data, variant); err != nil {
			return err
		}
		tc.Table = variant
	default:
		return fmt.Errorf("test case: unknown format %q", env.Format)
	}

	return nil
}

// Title returns a human-readable title for any variant.
func (tc *TestCase) Title() string {
	switch tc.Format {
	case FormatGherkin:
		if tc.Gherkin != nil {
			return tc.Gherkin.Scenario
		}
	case FormatSteps:
		if tc.Steps != nil {
			return tc.Steps.Title
		}
	case FormatTable:
		if tc.Table != nil {
			return tc.Table.Title
		}
	}
	return ""
}

// Text flattens the variant's content to a single searchable string.
func (tc *TestCase) Text() string {
	var parts []string
	switch tc.Format {
	case FormatGherkin:
		if tc.Gherkin != nil {
			parts = append(parts, tc.Gherkin.Scenario)
			parts = append(parts, tc.Gherkin.Given...)
			parts = append(parts, tc.Gherkin.When...)
			parts = append(parts, tc.Gherkin.Then...)
			parts = append(parts, tc.Gherkin.Tags...)
		}
	case FormatSteps:
		if tc.Steps != nil {
			parts = append(parts, tc.Steps.Title, tc.Steps.Objective)
			parts = append(parts, tc.Steps.Preconditions...)
			for _, step := range tc.Steps.Steps {
				parts = append(parts, step.Action, step.ExpectedResult)
			}
			parts = append(parts, tc.Steps.Postconditions...)
		}
	case FormatTable:
		if tc.Table != nil {
			parts = append(parts, tc.Table.Title, tc.Table.Description, tc.Table.ExpectedOutcome)
		}
	}
	return strings.Join(parts, " ")
}

func (tc *TestCase) wordCount() int {
	return len(strings.Fields(tc.Text()))
}
