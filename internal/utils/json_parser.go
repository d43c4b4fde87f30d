package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no JSON value can be recovered from model output
var ErrNoJSON = errors.New("no JSON value found")

var (
	fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.+?)\\s*```")
	controlChars    = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ParseAIJSON extracts and decodes JSON from model output that may be:
// - pure JSON
// - JSON wrapped in a markdown code block (```json ... ```)
// - a JSON object surrounded by prose
//
// The decoded value is left untyped; callers validate it themselves.
func ParseAIJSON(input string) (any, error) {
	input = strings.TrimPrefix(strings.TrimSpace(input), "\ufeff")
	if input == "" {
		return nil, fmt.Errorf("empty input: %w", ErrNoJSON)
	}

	var out any
	if err := json.Unmarshal([]byte(input), &out); err == nil {
		return out, nil
	}

	for _, candidate := range []string{extractFromMarkdown(input), extractJSONObject(input)} {
		if candidate == "" {
			continue
		}
		candidate = controlChars.ReplaceAllString(candidate, "")
		if err := json.Unmarshal([]byte(candidate), &out); err == nil {
			return out, nil
		}
	}

	return nil, fmt.Errorf("%w in: %s", ErrNoJSON, truncateString(input, 100))
}

// extractFromMarkdown returns the body of the first fenced block that looks like JSON
func extractFromMarkdown(input string) string {
	matches := fencedJSONBlock.FindStringSubmatch(input)
	if len(matches) < 2 {
		return ""
	}
	body := strings.TrimSpace(matches[1])
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[") {
		return body
	}
	return ""
}

// extractJSONObject finds the first balanced {...} in surrounding text
func extractJSONObject(input string) string {
	start := strings.Index(input, "{")
	if start < 0 {
		return ""
	}
	return extractBalancedBraces(input[start:], '{', '}')
}

// extractBalancedBraces returns the prefix of input up to the brace that
// closes the first open, ignoring braces inside JSON strings
func extractBalancedBraces(input string, open, close rune) string {
	depth := 0
	inString := false
	escape := false
	start := -1

	for i, ch := range input {
		if escape {
			escape = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escape = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			if depth == 0 {
				start = i
			}
			depth++
		case ch == close && depth > 0:
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return ""
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
