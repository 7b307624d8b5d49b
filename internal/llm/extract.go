package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alimgiray/bizscope/internal/models"
)

// ExtractJSONObject returns the substring from the first '{' to the last '}'
// in text. Models often wrap the JSON in prose or code fences; anything
// outside the outermost braces is discarded.
func ExtractJSONObject(text string) (string, error) {
	return extractDelimited(text, "{", "}")
}

// ExtractJSONArray is ExtractJSONObject for array-valued responses
func ExtractJSONArray(text string) (string, error) {
	return extractDelimited(text, "[", "]")
}

func extractDelimited(text, open, close string) (string, error) {
	start := strings.Index(text, open)
	end := strings.LastIndex(text, close)
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON %s...%s block found", models.ErrMalformedResponse, open, close)
	}

	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", fmt.Errorf("%w: extracted block is not valid JSON", models.ErrMalformedResponse)
	}
	return candidate, nil
}
