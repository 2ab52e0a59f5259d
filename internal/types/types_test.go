package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModelID(t *testing.T) {
	id, err := ParseModelID("cerebras/llama3.1-70b")
	require.NoError(t, err)
	assert.Equal(t, "cerebras", id.Provider)
	assert.Equal(t, "llama3.1-70b", id.Model)

	_, err = ParseModelID("invalid")
	assert.Error(t, err)

	_, err = ParseModelID("/model")
	assert.Error(t, err)

	_, err = ParseModelID("provider/")
	assert.Error(t, err)
}

func TestModelIDRoundTrip(t *testing.T) {
	for _, s := range []string{"cerebras/llama3.1-70b", "openai/gpt-4o-mini", "gemini/gemini-2.0-flash"} {
		id, err := ParseModelID(s)
		require.NoError(t, err)
		assert.Equal(t, s, id.String())
	}
}

func TestUsageMerge(t *testing.T) {
	a := Usage{InputTokens: 10, OutputTokens: 5}
	b := Usage{InputTokens: 8, OutputTokens: 20}
	merged := Merge(a, b)
	assert.Equal(t, 10, merged.InputTokens)
	assert.Equal(t, 20, merged.OutputTokens)
}

func TestUsageMergeIsFieldwiseMax(t *testing.T) {
	a := Usage{InputTokens: 1, OutputTokens: 100, CacheReadInputTokens: 50}
	b := Usage{InputTokens: 5, OutputTokens: 2, CacheCreationInputTokens: 9}
	merged := Merge(a, b)
	assert.Equal(t, Usage{InputTokens: 5, OutputTokens: 100, CacheReadInputTokens: 50, CacheCreationInputTokens: 9}, merged)
}

func TestToolCallAccumulatorConcatenation(t *testing.T) {
	var acc ToolCallAccumulator
	acc.Apply(ToolCallDelta{Index: 0, HasID: true, ID: "tu_1", HasFunctionName: true, FunctionName: "get_weather"})
	acc.Apply(ToolCallDelta{Index: 0, HasFunctionArgs: true, FunctionArguments: `{"loc`})
	acc.Apply(ToolCallDelta{Index: 0, HasFunctionArgs: true, FunctionArguments: `ation":"Tok`})
	acc.Apply(ToolCallDelta{Index: 0, HasFunctionArgs: true, FunctionArguments: `yo"}`})

	calls := acc.Finalize()
	require.Len(t, calls, 1)
	assert.Equal(t, "tu_1", calls[0].ID)
	assert.Equal(t, "get_weather", calls[0].Name)
	assert.Equal(t, `{"location":"Tokyo"}`, calls[0].Arguments)
}

func TestToolCallAccumulatorDropsEmptyID(t *testing.T) {
	var acc ToolCallAccumulator
	acc.Apply(ToolCallDelta{Index: 1, HasFunctionArgs: true, FunctionArguments: "{}"})
	assert.Empty(t, acc.Finalize())
}

func TestParseDataURI(t *testing.T) {
	media, data, ok := ParseDataURI("data:image/png;base64,Zm9v")
	require.True(t, ok)
	assert.Equal(t, "image/png", media)
	assert.Equal(t, "Zm9v", data)

	_, _, ok = ParseDataURI("https://example.com/cat.png")
	assert.False(t, ok)
}
