package schema

import (
	"github.com/qa-canvas/canvasd/pkg/models"
)

// ParseTicket leniently decodes and validates scraper ticket JSON.
// Tickets are inputs: unknown fields are ignored, and most fields are
// allowed to be empty — the analyzer degrades gracefully instead of
// rejecting thin tickets. Only the identity field is mandatory.
func ParseTicket(data []byte) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := decodeLenient(data, &ticket, "ticket"); err != nil {
		return nil, err
	}
	if err := ValidateTicket(&ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ValidateTicket checks the minimal structural requirements of a ticket.
func ValidateTicket(ticket *models.Ticket) error {
	l := &issueList{}

	if ticket.IssueKey == "" {
		l.missing("issue_key")
	}

	for _, comment := range ticket.Comments {
		if comment.Author == "" && comment.Body == "" {
			l.custom("comments", "comment must carry an author or a body")
			break
		}
	}

	if err := l.err("ticket"); err != nil {
		return err
	}
	return nil
}

// ParseQAProfile leniently decodes and validates a QA profile.
// A missing test_case_format is allowed here; the uncertainty layer
// records a gherkin-default assumption for it downstream.
func ParseQAProfile(data []byte) (*models.QAProfile, error) {
	var profile models.QAProfile
	if err := decodeLenient(data, &profile, "qa_profile"); err != nil {
		return nil, err
	}
	if err := ValidateQAProfile(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ValidateQAProfile checks enum membership on a profile's fields.
func ValidateQAProfile(profile *models.QAProfile) error {
	l := &issueList{}

	if profile.TestCaseFormat != "" && !profile.TestCaseFormat.IsValid() {
		l.invalidEnum("test_case_format", string(profile.TestCaseFormat), "gherkin", "steps", "table")
	}

	for category := range profile.QACategories {
		if !category.IsValid() {
			l.invalidEnum("qa_categories", string(category),
				"functional", "ui", "ux", "negative", "api", "database",
				"performance", "security", "mobile", "accessibility")
		}
	}

	if err := l.err("qa_profile"); err != nil {
		return err
	}
	return nil
}
