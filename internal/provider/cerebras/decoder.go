package cerebras

import (
	"encoding/json"
	"fmt"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// eventDecoder has no cross-event state: every Cerebras stream chunk is
// self-contained except for which tool-call index it targets, which
// the chunk itself already carries.
type eventDecoder struct{}

func newEventDecoder() *eventDecoder { return &eventDecoder{} }

var _ provider.EventDecoder = (*eventDecoder)(nil)

func (*eventDecoder) IsTerminal(ev sse.Event) bool { return sse.IsDone(ev.Data) }

func (*eventDecoder) Decode(ev sse.Event) (types.StreamChunk, bool, error) {
	if sse.IsDone(ev.Data) {
		return types.StreamChunk{}, false, nil
	}

	var chunk wireStreamChunk
	if err := json.Unmarshal([]byte(ev.Data), &chunk); err != nil {
		return types.StreamChunk{}, false, fmt.Errorf("cerebras: decoding stream chunk: %w", err)
	}

	// A chunk with no choices but a usage block is the trailing
	// usage-only frame enabled by stream_options.include_usage.
	if len(chunk.Choices) == 0 {
		if chunk.Usage == nil {
			return types.StreamChunk{}, false, nil
		}
		return types.UsageChunk(types.Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
		}), true, nil
	}

	choice := chunk.Choices[0]

	if len(choice.Delta.ToolCalls) > 0 {
		td := choice.Delta.ToolCalls[0]
		out := types.EmptyChunk(types.ChunkToolDelta)
		delta := &types.ToolCallDelta{Index: td.Index}
		if td.ID != "" {
			delta.HasID, delta.ID = true, td.ID
		}
		if td.Function.Name != "" {
			delta.HasFunctionName, delta.FunctionName = true, td.Function.Name
		}
		if td.Function.Arguments != "" {
			delta.HasFunctionArgs, delta.FunctionArguments = true, td.Function.Arguments
		}
		out.ToolCallDelta = delta
		return applyFinish(out, choice.FinishReason), true, nil
	}

	out := types.TextChunk(choice.Delta.Content)
	return applyFinish(out, choice.FinishReason), true, nil
}

func applyFinish(chunk types.StreamChunk, finishReason string) types.StreamChunk {
	if finishReason == "" {
		return chunk
	}
	return chunk.WithFinishReason(parseFinishReason(finishReason))
}

func (*Provider) NewEventDecoder() provider.EventDecoder {
	return newEventDecoder()
}
