// Package schema holds the declarative validators for every boundary
// structure. Validators are the single source of truth: every payload
// crossing the network boundary — requests, model responses, canvases —
// passes through one of them.
//
// Inputs are parsed leniently (unknown fields ignored); outputs are
// parsed strictly (unknown fields rejected). Both paths produce the same
// typed issue list.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Code classifies a single validation issue.
type Code string

const (
	CodeInvalidType   Code = "invalid_type"
	CodeMissing       Code = "missing"
	CodeInvalidEnum   Code = "invalid_enum"
	CodeInvalidString Code = "invalid_string"
	CodeRange         Code = "range"
	CodeCustom        Code = "custom"
)

// Issue is one field-level validation failure.
type Issue struct {
	Path     string `json:"path"`
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Received string `json:"received,omitempty"`
}

// Error aggregates validation issues for one payload.
type Error struct {
	Subject string
	Issues  []Issue
}

// Error returns the formatted error message
func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%s: validation failed", e.Subject)
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Path, issue.Message))
	}
	return fmt.Sprintf("%s: %s", e.Subject, strings.Join(parts, "; "))
}

// issueList collects issues while a validator walks a structure.
type issueList struct {
	issues []Issue
}

func (l *issueList) missing(path string) {
	l.issues = append(l.issues, Issue{Path: path, Code: CodeMissing, Message: "required field is missing or empty"})
}

func (l *issueList) invalidEnum(path, received string, allowed ...string) {
	l.issues = append(l.issues, Issue{
		Path:     path,
		Code:     CodeInvalidEnum,
		Message:  fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
		Received: received,
	})
}

func (l *issueList) invalidString(path, message, received string) {
	l.issues = append(l.issues, Issue{Path: path, Code: CodeInvalidString, Message: message, Received: received})
}

func (l *issueList) outOfRange(path, message, received string) {
	l.issues = append(l.issues, Issue{Path: path, Code: CodeRange, Message: message, Received: received})
}

func (l *issueList) custom(path, message string) {
	l.issues = append(l.issues, Issue{Path: path, Code: CodeCustom, Message: message})
}

func (l *issueList) invalidType(path, message string) {
	l.issues = append(l.issues, Issue{Path: path, Code: CodeInvalidType, Message: message})
}

// err finalizes the collected issues into an *Error, or nil when clean.
func (l *issueList) err(subject string) *Error {
	if len(l.issues) == 0 {
		return nil
	}
	return &Error{Subject: subject, Issues: l.issues}
}

// decodeLenient unmarshals input JSON, ignoring unknown fields.
func decodeLenient(data []byte, v any, subject string) *Error {
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Subject: subject, Issues: []Issue{{
			Path:    "$",
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}}}
	}
	return nil
}

// decodeStrict unmarshals output JSON, rejecting unknown fields.
func decodeStrict(data []byte, v any, subject string) *Error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &Error{Subject: subject, Issues: []Issue{{
			Path:    "$",
			Code:    CodeInvalidType,
			Message: fmt.Sprintf("invalid JSON: %v", err),
		}}}
	}
	return nil
}
