// Package masking redacts provider credentials from text before it is
// logged or returned to clients. Provider SDK errors can echo the
// request that failed, including Authorization headers and API keys.
package masking

import (
	"fmt"
	"regexp"
)

// Pattern is a compiled redaction rule.
type Pattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
}

// builtinPatterns covers the credential shapes of the supported
// providers plus generic bearer tokens and key=value pairs.
// Anthropic keys must come before the generic sk- pattern so the more
// specific replacement wins.
var builtinPatterns = []struct {
	name        string
	expr        string
	replacement string
}{
	{
		name:        "anthropic_api_key",
		expr:        `sk-ant-[A-Za-z0-9_-]{8,}`,
		replacement: `__MASKED_API_KEY__`,
	},
	{
		name:        "openai_api_key",
		expr:        `sk-[A-Za-z0-9_-]{20,}`,
		replacement: `__MASKED_API_KEY__`,
	},
	{
		name:        "bearer_token",
		expr:        `(?i)bearer\s+[A-Za-z0-9._~+/=-]{8,}`,
		replacement: `Bearer __MASKED_TOKEN__`,
	},
	{
		name:        "api_key_pair",
		expr:        `(?i)(api[_-]?key["']?\s*[:=]\s*["']?)[A-Za-z0-9_-]{8,}`,
		replacement: `${1}__MASKED_API_KEY__`,
	},
}

// Redactor applies an ordered set of patterns to strings.
type Redactor struct {
	patterns []*Pattern
}

// NewRedactor builds a redactor with the built-in credential patterns.
func NewRedactor() *Redactor {
	r := &Redactor{}
	for _, p := range builtinPatterns {
		// Built-in expressions are compile-time constants.
		r.patterns = append(r.patterns, &Pattern{
			Name:        p.name,
			Regex:       regexp.MustCompile(p.expr),
			Replacement: p.replacement,
		})
	}
	return r
}

// Add compiles and appends a custom pattern. Patterns apply in the
// order they were added, after the built-ins.
func (r *Redactor) Add(name, expr, replacement string) error {
	compiled, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("compile masking pattern %q: %w", name, err)
	}
	r.patterns = append(r.patterns, &Pattern{
		Name:        name,
		Regex:       compiled,
		Replacement: replacement,
	})
	return nil
}

// Redact returns the input with every pattern match replaced.
func (r *Redactor) Redact(s string) string {
	for _, p := range r.patterns {
		s = p.Regex.ReplaceAllString(s, p.Replacement)
	}
	return s
}

// RedactError formats an error with credentials removed. Nil errors
// yield an empty string.
func (r *Redactor) RedactError(err error) string {
	if err == nil {
		return ""
	}
	return r.Redact(err.Error())
}
