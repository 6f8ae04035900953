package schema

import (
	"strings"
)

// ExtractJSON pulls a JSON object or array out of raw model text. Models
// routinely wrap JSON in markdown code fences or preface it with prose;
// the extractor strips fences and returns the outermost balanced value.
// Returns false when the text contains no balanced JSON value.
func ExtractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	// Strip a ```json ... ``` (or bare ```) fence if present.
	if idx := strings.Index(text, "```"); idx != -1 {
		rest := text[idx+3:]
		// Skip the language tag on the fence line.
		if nl := strings.IndexByte(rest, '\n'); nl != -1 {
			firstLine := strings.TrimSpace(rest[:nl])
			if firstLine == "" || isFenceLanguage(firstLine) {
				rest = rest[nl+1:]
			}
		}
		if end := strings.Index(rest, "```"); end != -1 {
			rest = rest[:end]
		}
		if candidate, ok := extractBalanced(rest); ok {
			return candidate, true
		}
	}

	return extractBalanced(text)
}

// isFenceLanguage reports whether a fence info string names a JSON-ish
// language tag rather than being content.
func isFenceLanguage(s string) bool {
	switch strings.ToLower(s) {
	case "json", "json5", "javascript", "js":
		return true
	default:
		return false
	}
}

// extractBalanced finds the first '{' or '[' and returns the substring up
// to its balanced closing delimiter, honoring JSON string escapes.
func extractBalanced(text string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if text[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
