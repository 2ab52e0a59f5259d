package openairesponses

import (
	"encoding/json"
	"fmt"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// eventDecoder tracks the item id of whichever function_call item is
// currently open, mapping it to a stable ToolCallDelta index, so that
// function_call_arguments.delta events (which reference an item_id,
// not an index) can be folded into the right accumulator slot.
type eventDecoder struct {
	toolIndexByItemID map[string]int
	nextTool          int
}

func newEventDecoder() *eventDecoder {
	return &eventDecoder{toolIndexByItemID: make(map[string]int)}
}

var _ provider.EventDecoder = (*eventDecoder)(nil)

// IsTerminal is always false: this wire format ends the stream with a
// response.completed event rather than a literal sentinel frame.
func (*eventDecoder) IsTerminal(sse.Event) bool { return false }

func (d *eventDecoder) Decode(ev sse.Event) (types.StreamChunk, bool, error) {
	var event wireStreamEvent
	if err := json.Unmarshal([]byte(ev.Data), &event); err != nil {
		return types.StreamChunk{}, false, fmt.Errorf("openairesponses: decoding stream event: %w", err)
	}

	switch event.Type {
	case "response.output_text.delta":
		return types.TextChunk(event.Delta), true, nil

	case "response.output_item.added":
		if event.Item == nil || event.Item.Type != "function_call" {
			return types.StreamChunk{}, false, nil
		}
		idx := d.nextTool
		d.toolIndexByItemID[event.Item.ID] = idx
		d.nextTool++
		chunk := types.EmptyChunk(types.ChunkToolDelta)
		chunk.ToolCallDelta = &types.ToolCallDelta{
			Index: idx, HasID: true, ID: event.Item.CallID,
			HasFunctionName: true, FunctionName: event.Item.Name,
		}
		return chunk, true, nil

	case "response.function_call_arguments.delta":
		idx, ok := d.toolIndexByItemID[event.ItemID]
		if !ok {
			return types.StreamChunk{}, false, nil
		}
		chunk := types.EmptyChunk(types.ChunkToolDelta)
		chunk.ToolCallDelta = &types.ToolCallDelta{Index: idx, HasFunctionArgs: true, FunctionArguments: event.Delta}
		return chunk, true, nil

	case "response.completed":
		if event.Response == nil {
			return types.StreamChunk{}, false, nil
		}
		finish := finishFromStatus(event.Response.Status)
		chunk := types.UsageChunk(types.Usage{
			InputTokens:  event.Response.Usage.InputTokens,
			OutputTokens: event.Response.Usage.OutputTokens,
		})
		return chunk.WithFinishReason(finish), true, nil

	default:
		// response.created, response.output_item.done, response.in_progress,
		// and similar bookkeeping events carry nothing we surface.
		return types.StreamChunk{}, false, nil
	}
}

func (*Provider) NewEventDecoder() provider.EventDecoder {
	return newEventDecoder()
}
