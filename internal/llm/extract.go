package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Generate runs one completion and decodes the model output into T. The
// collaborators must return structured JSON; free-form text that cannot be
// decoded is an error for the calling stage, never partially interpreted.
func Generate[T any](ctx context.Context, c Client, prompt string) (T, error) {
	var out T
	content, err := c.Complete(ctx, prompt)
	if err != nil {
		return out, err
	}
	raw := ExtractJSON(content)
	if raw == "" {
		return out, fmt.Errorf("no JSON found in LLM output")
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("malformed LLM output: %w", err)
	}
	return out, nil
}

// ExtractJSON finds the first balanced JSON object in a string and returns it.
// It strips common markdown fences first.
func ExtractJSON(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, "\r\n", "\n")

	// Remove markdown fences (commonly output by LLMs)
	for _, r := range []string{"```json", "```yaml", "```text", "```", "`json", "`"} {
		s = strings.ReplaceAll(s, r, "")
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1])
			}
		}
	}

	// no balanced object found
	return ""
}
