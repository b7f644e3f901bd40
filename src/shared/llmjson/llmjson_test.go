package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBareJSON(t *testing.T) {
	v, err := Extract(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": float64(1)}, v)
}

func TestExtractFencedBlock(t *testing.T) {
	v, err := Extract("Here is the plan:\n```json\n[{\"type\": \"fact_check\"}]\n```\nDone.")
	require.NoError(t, err)
	arr, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 1)
}

func TestExtractFenceWithoutLanguage(t *testing.T) {
	v, err := Extract("```\n{\"trust_score\": 80}\n```")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"trust_score": float64(80)}, v)
}

func TestExtractEmbeddedInProse(t *testing.T) {
	v, err := Extract(`Sure! Based on my analysis the result is {"trust_score": 42, "explanation": "mixed evidence"} - let me know if you need more.`)
	require.NoError(t, err)
	obj, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), obj["trust_score"])
}

func TestExtractStripsThinkPreamble(t *testing.T) {
	v, err := Extract("<think>I should output an array.</think>\n[{\"action\": \"content_safety\"}]")
	require.NoError(t, err)
	_, ok := v.([]any)
	assert.True(t, ok)
}

func TestExtractNestedBrackets(t *testing.T) {
	v, err := Extract(`prefix [{"facts": ["a", "b"]}, {"facts": []}] suffix`)
	require.NoError(t, err)
	arr, ok := v.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 2)
}

func TestExtractNoJSON(t *testing.T) {
	_, err := Extract("not json at all")
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractUnbalanced(t *testing.T) {
	_, err := Extract(`{"a": [1, 2`)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractObjectRejectsArray(t *testing.T) {
	_, err := ExtractObject(`[1, 2]`)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestExtractArrayBare(t *testing.T) {
	arr, err := ExtractArray(`["x", "y"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, arr)
}

func TestExtractArrayUnwrapsObject(t *testing.T) {
	arr, err := ExtractArray(`{"actions": [{"type": "fact_check"}]}`, "actions", "actions_list")
	require.NoError(t, err)
	assert.Len(t, arr, 1)

	arr, err = ExtractArray(`{"actions_list": []}`, "actions", "actions_list")
	require.NoError(t, err)
	assert.Empty(t, arr)
}

func TestExtractArrayObjectWithoutKey(t *testing.T) {
	_, err := ExtractArray(`{"other": []}`, "actions")
	assert.ErrorIs(t, err, ErrNoJSON)
}
