package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CleanJSONResponse strips markdown code fences from AI responses and, when
// the response carries prose around the payload, extracts the first balanced
// JSON object. Models occasionally wrap JSON in ```json fences even when
// told not to.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") && strings.HasSuffix(response, "```") {
		response = strings.TrimPrefix(response, "```json")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	} else if strings.HasPrefix(response, "```") && strings.HasSuffix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
		response = strings.TrimSpace(response)
	}

	return extractJSON(response)
}

// extractJSON finds the first balanced {...} block and returns it if it is
// valid JSON (after a trailing-comma fix). Falls back to the input unchanged.
func extractJSON(response string) string {
	if isValidJSON(response) {
		return response
	}

	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}

	braceCount := 0
	inString := false
	escaped := false
	end := 0
	for i := start; i < len(response); i++ {
		ch := response[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				braceCount++
			}
		case '}':
			if !inString {
				braceCount--
				if braceCount == 0 {
					end = i + 1
				}
			}
		}
		if end != 0 {
			break
		}
	}

	if end == 0 {
		return response
	}

	candidate := trailingCommaRe.ReplaceAllString(response[start:end], "$1")
	if isValidJSON(candidate) {
		return candidate
	}

	return response
}

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

func isValidJSON(str string) bool {
	var js interface{}
	return json.Unmarshal([]byte(str), &js) == nil
}
