// Package jsonutil provides JSON extraction utilities for parsing LLM responses.
//
// Models speaking the decision protocol often wrap their JSON in markdown
// code blocks or surround it with commentary. This package extracts and
// parses the JSON object from such responses.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds and returns the JSON portion of a response string.
// It handles common LLM response patterns:
// 1. Pure JSON response - returns the full response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object embedded in text - finds first '{' and last '}'
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Uses simple brace matching, not full JSON parsing
// - May fail if braces appear in strings or are unbalanced
func extractJSON(response string) (string, error) {
	// Strip markdown code blocks if present
	response = stripMarkdownCodeBlocks(response)

	// Try full response first
	var test interface{}
	if err := json.Unmarshal([]byte(response), &test); err == nil {
		return response, nil
	}

	// Try to find and extract JSON from the response
	start := strings.Index(response, "{")
	if start != -1 {
		end := strings.LastIndex(response, "}")
		if end != -1 && end > start {
			jsonStr := response[start : end+1]
			var test interface{}
			if err := json.Unmarshal([]byte(jsonStr), &test); err == nil {
				return jsonStr, nil
			}
		}
	}

	// Create a preview for the error message
	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// stripMarkdownCodeBlocks removes markdown code block markers from a response.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// ExtractJSONFromResponse extracts and parses the JSON object embedded in an
// LLM response. Returns the parsed value or an error if extraction fails.
func ExtractJSONFromResponse[T any](response string) (T, error) {
	var result T
	jsonStr, err := extractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}
