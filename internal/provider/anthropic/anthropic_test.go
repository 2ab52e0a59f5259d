package anthropic

import (
	"encoding/json"
	"testing"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCompleteBodyAppliesDefaultMaxTokens(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model:    "claude-3-5-sonnet-20241022",
		Messages: []types.Message{types.UserMessage("hi")},
	})
	require.NoError(t, err)

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, defaultMaxTokens, req.MaxTokens)
	assert.False(t, req.Stream)
}

func TestBuildCompleteBodyCarriesStopSequences(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model:    "claude-3-5-sonnet-20241022",
		Messages: []types.Message{types.UserMessage("hi")},
		Stop:     []string{"\n\nHuman:"},
	})
	require.NoError(t, err)

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, []string{"\n\nHuman:"}, req.StopSequences)
}

func TestBuildStreamBodyPullsSystemMessageOut(t *testing.T) {
	p := New()
	body, err := p.BuildStreamBody(provider.RequestConfig{
		Model: "claude-3-5-sonnet-20241022",
		Messages: []types.Message{
			types.SystemMessage("be terse"),
			types.UserMessage("hi"),
		},
		MaxTokens: 100,
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	assert.Equal(t, "be terse", raw["system"])
	assert.Len(t, raw["messages"], 1)
	assert.True(t, raw["stream"].(bool))
}

func TestToolResultMessageBecomesUserToolResultBlock(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model:     "claude-3-5-sonnet-20241022",
		Messages:  []types.Message{types.ToolResultMessage("tu_1", "72F and sunny")},
		MaxTokens: 100,
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	msgs := raw["messages"].([]any)
	require.Len(t, msgs, 1)
	m := msgs[0].(map[string]any)
	assert.Equal(t, "user", m["role"])
	blocks := m["content"].([]any)
	block := blocks[0].(map[string]any)
	assert.Equal(t, "tool_result", block["type"])
	assert.Equal(t, "tu_1", block["tool_use_id"])
}

func TestParseResponseExtractsTextAndToolUse(t *testing.T) {
	p := New()
	body := []byte(`{
		"id": "msg_1", "model": "claude-3-5-sonnet-20241022",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Let me check."},
			{"type": "tool_use", "id": "tu_1", "name": "get_weather", "input": {"location":"Tokyo"}}
		],
		"usage": {"input_tokens": 10, "output_tokens": 20}
	}`)

	result, err := p.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Let me check.", result.Content)
	assert.Equal(t, types.FinishToolCalls, result.FinishReason)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "get_weather", result.ToolCalls[0].Name)
	assert.JSONEq(t, `{"location":"Tokyo"}`, result.ToolCalls[0].Arguments)
}

func TestDecodeStreamTextDelta(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hi"}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hi", chunk.Text())
}

func TestDecodeStreamToolCallSequence(t *testing.T) {
	d := newEventDecoder()

	_, ok, err := d.Decode(sse.Event{Data: `{"type":"content_block_start","index":1,"content_block":{"type":"tool_use","id":"tu_1","name":"get_weather"}}`})
	require.NoError(t, err)
	require.True(t, ok)

	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"content_block_delta","index":1,"delta":{"type":"input_json_delta","partial_json":"{\"location\":"}}`})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, chunk.ToolCallDelta)
	assert.Equal(t, 0, chunk.ToolCallDelta.Index)
	assert.Equal(t, `{"location":`, chunk.ToolCallDelta.FunctionArguments)
}

func TestDecodeMessageDeltaCarriesFinishReason(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":42}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.FinishStop, chunk.FinishReason)
	assert.Equal(t, 42, chunk.Usage.OutputTokens)
}
