package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// eventDecoder tracks state across an Anthropic SSE stream: which
// content-block indices opened as tool_use blocks, plus a running
// tool-call counter used to produce stable ToolCallDelta indices
// independent of Anthropic's own per-block index (which also counts
// text blocks). content_block_delta dispatches on the delta's own type
// and uses toolIndex to place input_json_delta fragments.
type eventDecoder struct {
	blockIsTool map[int]bool
	blockToolID map[int]string
	toolIndex   map[int]int
	nextTool    int
}

func newEventDecoder() *eventDecoder {
	return &eventDecoder{
		blockIsTool: make(map[int]bool),
		blockToolID: make(map[int]string),
		toolIndex:   make(map[int]int),
	}
}

var _ provider.EventDecoder = (*eventDecoder)(nil)

// IsTerminal is always false: Anthropic carries the finish reason on
// message_delta and closes with a message_stop event (which Decode
// turns into an empty ping chunk); the stream ends when the connection
// closes, and there is no "[DONE]" sentinel frame to detect here.
func (*eventDecoder) IsTerminal(sse.Event) bool { return false }

func (d *eventDecoder) Decode(ev sse.Event) (types.StreamChunk, bool, error) {
	var event wireStreamEvent
	if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
		return types.StreamChunk{}, false, fmt.Errorf("anthropic: decoding stream event: %w", err)
	}

	switch event.Type {
	case "message_start":
		if event.Message == nil {
			return types.StreamChunk{}, false, nil
		}
		return types.UsageChunk(types.Usage{
			InputTokens:              event.Message.Usage.InputTokens,
			CacheReadInputTokens:     event.Message.Usage.CacheReadInputTokens,
			CacheCreationInputTokens: event.Message.Usage.CacheCreationInputTokens,
		}), true, nil

	case "content_block_start":
		if event.ContentBlock != nil && event.ContentBlock.Type == "tool_use" {
			d.blockIsTool[event.Index] = true
			d.blockToolID[event.Index] = event.ContentBlock.ID
			idx := d.nextTool
			d.toolIndex[event.Index] = idx
			d.nextTool++
			chunk := types.EmptyChunk(types.ChunkToolDelta)
			chunk.ToolCallDelta = &types.ToolCallDelta{
				Index: idx, HasID: true, ID: event.ContentBlock.ID,
				HasFunctionName: true, FunctionName: event.ContentBlock.Name,
			}
			return chunk, true, nil
		}
		return types.StreamChunk{}, false, nil

	case "content_block_delta":
		if event.Delta == nil {
			return types.StreamChunk{}, false, nil
		}
		switch event.Delta.Type {
		case "text_delta":
			return types.TextChunk(event.Delta.Text), true, nil
		case "input_json_delta":
			idx, ok := d.toolIndex[event.Index]
			if !ok {
				return types.StreamChunk{}, false, nil
			}
			chunk := types.EmptyChunk(types.ChunkToolDelta)
			chunk.ToolCallDelta = &types.ToolCallDelta{
				Index: idx, HasFunctionArgs: true, FunctionArguments: event.Delta.PartialJSON,
			}
			return chunk, true, nil
		case "thinking_delta":
			return types.StreamChunk{Kind: types.ChunkThinking}, true, nil
		default:
			return types.StreamChunk{}, false, nil
		}

	case "content_block_stop":
		delete(d.blockIsTool, event.Index)
		return types.StreamChunk{}, false, nil

	case "message_delta":
		chunk := types.EmptyChunk(types.ChunkUsageOnly)
		if event.Usage != nil {
			chunk = chunk.WithUsage(types.Usage{OutputTokens: event.Usage.OutputTokens})
		}
		if event.Delta != nil && event.Delta.StopReason != "" {
			chunk = chunk.WithFinishReason(toFinishReason(event.Delta.StopReason))
		}
		return chunk, true, nil

	case "message_stop":
		return types.EmptyChunk(types.ChunkPing), true, nil

	default:
		// ping and any future event types carry nothing we need.
		return types.StreamChunk{}, false, nil
	}
}

func (*Provider) NewEventDecoder() provider.EventDecoder {
	return newEventDecoder()
}
