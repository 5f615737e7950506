package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClient struct {
	response string
	err      error
}

func (c *staticClient) Complete(context.Context, string) (string, error) {
	return c.response, c.err
}

func TestExtractJSONStripsFences(t *testing.T) {
	in := "```json\n{\"steps\": [\"a\", \"b\"]}\n```"
	assert.Equal(t, `{"steps": ["a", "b"]}`, ExtractJSON(in))
}

func TestExtractJSONFindsFirstBalancedObject(t *testing.T) {
	in := `Here is the result: {"a": {"b": 1}} and some trailing text {`
	assert.Equal(t, `{"a": {"b": 1}}`, ExtractJSON(in))
}

func TestExtractJSONEmptyInputs(t *testing.T) {
	assert.Equal(t, "", ExtractJSON(""))
	assert.Equal(t, "", ExtractJSON("no json here"))
	assert.Equal(t, "", ExtractJSON("{never closed"))
}

func TestGenerateDecodesTypedOutput(t *testing.T) {
	type out struct {
		Steps []string `json:"steps"`
	}
	c := &staticClient{response: "```json\n{\"steps\": [\"load\", \"compare\"]}\n```"}
	got, err := Generate[out](context.Background(), c, "prompt")
	require.NoError(t, err)
	assert.Equal(t, []string{"load", "compare"}, got.Steps)
}

func TestGenerateRejectsFreeFormText(t *testing.T) {
	type out struct {
		Steps []string `json:"steps"`
	}
	c := &staticClient{response: "I think the campaign is just tired."}
	_, err := Generate[out](context.Background(), c, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no JSON found")
}

func TestGenerateRejectsMalformedJSON(t *testing.T) {
	type out struct {
		Steps []string `json:"steps"`
	}
	c := &staticClient{response: `{"steps": "not a list"}`}
	_, err := Generate[out](context.Background(), c, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed LLM output")
}

func TestMockMatchesMarker(t *testing.T) {
	m := &Mock{Responses: map[string]string{"marker": `{"ok": true}`}, Fallback: `{}`}
	got, err := m.Complete(context.Background(), "prompt with marker inside")
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, got)

	got, err = m.Complete(context.Background(), "unrelated prompt")
	require.NoError(t, err)
	assert.Equal(t, `{}`, got)
}
