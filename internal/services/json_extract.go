package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedJSONRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// extractJSONObject pulls the first JSON object out of an LLM response. The
// model is asked to return bare JSON, but responses sometimes wrap the object
// in explanatory prose or a fenced code block.
func extractJSONObject(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	// Fast path: the whole response is the object.
	if strings.HasPrefix(content, "{") && json.Valid([]byte(content)) {
		return content, nil
	}

	if m := fencedJSONRegex.FindStringSubmatch(content); len(m) == 2 {
		if json.Valid([]byte(m[1])) {
			return m[1], nil
		}
	}

	// Scan for the first balanced object, ignoring braces inside strings.
	start := strings.Index(content, "{")
	for start != -1 {
		if candidate, ok := balancedObjectAt(content, start); ok {
			if json.Valid([]byte(candidate)) {
				return candidate, nil
			}
		}
		next := strings.Index(content[start+1:], "{")
		if next == -1 {
			break
		}
		start = start + 1 + next
	}

	return "", fmt.Errorf("%w: no JSON object found", ErrMalformedOutput)
}

// balancedObjectAt returns the substring from start to the brace that closes
// the object opened there.
func balancedObjectAt(s string, start int) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
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
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
