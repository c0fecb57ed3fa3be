package extraction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseAnalyzeJSON parses the JSON document emitted by an engine backend.
// Models wrap their output in markdown fences or prose often enough that the
// parser extracts the outermost JSON object before unmarshaling. Field text
// is kept exactly as detected; the normalizer owns all value interpretation.
func parseAnalyzeJSON(text string) (*AnalyzeResponse, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var resp AnalyzeResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	return &resp, nil
}
