package openairesponses

import (
	"encoding/json"
	"testing"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBodyPullsSystemIntoInstructions(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model: "gpt-4o-mini",
		Messages: []types.Message{
			types.SystemMessage("be terse"),
			types.UserMessage("hi"),
		},
	})
	require.NoError(t, err)

	var req wireRequest
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "be terse", req.Instructions)
	assert.Len(t, req.Input, 1)
}

func TestToolResultBecomesFunctionCallOutput(t *testing.T) {
	p := New()
	body, err := p.BuildCompleteBody(provider.RequestConfig{
		Model:    "gpt-4o-mini",
		Messages: []types.Message{types.ToolResultMessage("call_1", "72F")},
	})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	items := raw["input"].([]any)
	item := items[0].(map[string]any)
	assert.Equal(t, "function_call_output", item["type"])
	assert.Equal(t, "call_1", item["call_id"])
}

func TestParseResponseMessageAndFunctionCall(t *testing.T) {
	p := New()
	body := []byte(`{
		"id":"r1","model":"gpt-4o-mini",
		"output":[
			{"type":"message","content":[{"type":"output_text","text":"Sure."}]},
			{"type":"function_call","call_id":"call_1","name":"get_weather","arguments":"{\"location\":\"Tokyo\"}"}
		],
		"usage":{"input_tokens":8,"output_tokens":4}
	}`)
	result, err := p.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Sure.", result.Content)
	assert.Equal(t, types.FinishToolCalls, result.FinishReason)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "get_weather", result.ToolCalls[0].Name)
}

func TestParseResponseIncompleteStatusMapsToFinishLength(t *testing.T) {
	p := New()
	body := []byte(`{
		"id":"r1","model":"gpt-4o-mini","status":"incomplete",
		"output":[
			{"type":"message","content":[{"type":"output_text","text":"Sur"}]}
		],
		"usage":{"input_tokens":8,"output_tokens":4}
	}`)
	result, err := p.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, types.FinishLength, result.FinishReason)
}

func TestParseResponseCompletedStatusMapsToFinishStop(t *testing.T) {
	p := New()
	body := []byte(`{
		"id":"r1","model":"gpt-4o-mini","status":"completed",
		"output":[
			{"type":"message","content":[{"type":"output_text","text":"Sure."}]}
		],
		"usage":{"input_tokens":8,"output_tokens":4}
	}`)
	result, err := p.ParseResponse(body)
	require.NoError(t, err)
	assert.Equal(t, types.FinishStop, result.FinishReason)
}

func TestDecodeTextDeltaEvent(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"response.output_text.delta","delta":"Hi"}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hi", chunk.Text())
}

func TestDecodeFunctionCallSequence(t *testing.T) {
	d := newEventDecoder()

	_, ok, err := d.Decode(sse.Event{Data: `{"type":"response.output_item.added","item":{"id":"item_1","type":"function_call","call_id":"call_1","name":"get_weather"}}`})
	require.NoError(t, err)
	require.True(t, ok)

	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"response.function_call_arguments.delta","item_id":"item_1","delta":"{\"loc\":"}`})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, chunk.ToolCallDelta)
	assert.Equal(t, 0, chunk.ToolCallDelta.Index)
}

func TestDecodeResponseCompletedIncompleteStatus(t *testing.T) {
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"response.completed","response":{"id":"r1","model":"gpt-4o-mini","status":"incomplete","output":[],"usage":{"input_tokens":8,"output_tokens":4}}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.FinishLength, chunk.FinishReason)
}

func TestDecodeResponseCompletedCompletedStatusIgnoresToolCalls(t *testing.T) {
	// A response.completed event whose status is "completed" maps to
	// FinishStop even when the output contains a function_call item —
	// the streaming path derives finish reason purely from status.
	d := newEventDecoder()
	chunk, ok, err := d.Decode(sse.Event{Data: `{"type":"response.completed","response":{"id":"r1","model":"gpt-4o-mini","status":"completed","output":[{"type":"function_call","call_id":"call_1","name":"get_weather","arguments":"{}"}],"usage":{"input_tokens":8,"output_tokens":4}}}`})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, types.FinishStop, chunk.FinishReason)
}
