package cerebras

import (
	"encoding/json"
	"testing"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStreamBodySetsIncludeUsage(t *testing.T) {
	p := New()
	body, err := p.BuildStreamBody(provider.RequestConfig{
		Model:    "llama3.1-70b",
		Messages: []types.Message{types.UserMessage("hi")},
	})
	require.NoError(t, err)

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))
	require.NotNil(t, req.StreamOptions)
	assert.True(t, req.StreamOptions.IncludeUsage)
	assert.True(t, req.Stream)
}

func TestBuildBodyCarriesStopSequences(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model:    "llama3.1-70b",
		Messages: []types.Message{types.UserMessage("hi")},
		Stop:     []string{"\n\n", "END"},
	})
	require.NoError(t, err)

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, []string{"\n\n", "END"}, req.Stop)
}

func TestParseResponse(t *testing.T) {
	p := New()
	body := []byte(`{
		"id":"c1","model":"llama3.1-70b",
		"choices":[{"message":{"role":"assistant","content":"hi there"},"finish_reason":"stop"}],
		"usage":{"prompt_tokens":5,"completion_tokens":3}
	}`)
	result, err := p.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "hi there", result.Content)
	assert.Equal(t, types.FinishStop, result.FinishReason)
	assert.Equal(t, 5, result.Usage.InputTokens)
}

func TestDecodeTextChunk(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"choices":[{"delta":{"content":"hi"},"finish_reason":""}]}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hi", chunk.Text())
}

func TestDecodeUsageOnlyChunk(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"choices":[],"usage":{"prompt_tokens":10,"completion_tokens":20}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.ChunkUsageOnly, chunk.Kind)
	assert.Equal(t, 20, chunk.Usage.OutputTokens)
}

func TestDecodeToolCallDelta(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"get_weather","arguments":""}}]},"finish_reason":""}]}`})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, chunk.ToolCallDelta)
	assert.Equal(t, "call_1", chunk.ToolCallDelta.ID)
}

func TestIsTerminalOnDoneMarker(t *testing.T) {
	d := newEventDecoder()
	assert.True(t, d.IsTerminal(sse.Event{Data: "[DONE]"}))
	assert.False(t, d.IsTerminal(sse.Event{Data: `{"choices":[]}`}))
}
