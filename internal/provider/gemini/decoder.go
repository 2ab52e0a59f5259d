package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// eventDecoder keeps the last usage seen across the whole stream:
// Gemini (unlike Cerebras or Anthropic) repeats cumulative usage on
// every single event, so the most recent one is also the correct
// final total — we attach it to every chunk rather than only the
// last, matching what the spec calls out as "latest wins".
type eventDecoder struct {
	lastUsage types.Usage
	nextTool  int
}

// finish maps a candidate finishReason, reporting FinishToolCalls once
// any function call has been emitted in this stream, as ParseResponse does.
func (d *eventDecoder) finish(chunk types.StreamChunk, finishReason string) types.StreamChunk {
	chunk = applyFinish(chunk, finishReason)
	if chunk.HasFinish && d.nextTool > 0 {
		chunk = chunk.WithFinishReason(types.FinishToolCalls)
	}
	return chunk
}

func newEventDecoder() *eventDecoder { return &eventDecoder{} }

var _ provider.EventDecoder = (*eventDecoder)(nil)

// IsTerminal is always false: Gemini has no end-of-stream sentinel,
// relying entirely on the underlying connection closing.
func (*eventDecoder) IsTerminal(sse.Event) bool { return false }

func (d *eventDecoder) Decode(ev sse.Event) (types.StreamChunk, bool, error) {
	var resp wireResponse
	if err := json.Unmarshal([]byte(ev.Data), &resp); err != nil {
		return types.StreamChunk{}, false, fmt.Errorf("gemini: decoding stream event: %w", err)
	}

	if resp.UsageMetadata != nil {
		d.lastUsage = types.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}

	if len(resp.Candidates) == 0 {
		return types.UsageChunk(d.lastUsage), true, nil
	}
	candidate := resp.Candidates[0]

	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return types.StreamChunk{}, false, fmt.Errorf("gemini: marshaling function call args: %w", err)
			}
			idx := d.nextTool
			d.nextTool++
			chunk := types.EmptyChunk(types.ChunkToolDelta).WithUsage(d.lastUsage)
			chunk.ToolCallDelta = &types.ToolCallDelta{
				Index: idx, HasID: true, ID: "call_" + uuid.NewString(),
				HasFunctionName: true, FunctionName: part.FunctionCall.Name,
				HasFunctionArgs: true, FunctionArguments: string(args),
			}
			return d.finish(chunk, candidate.FinishReason), true, nil
		}
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	chunk := types.TextChunk(text).WithUsage(d.lastUsage)
	return d.finish(chunk, candidate.FinishReason), true, nil
}

func applyFinish(chunk types.StreamChunk, finishReason string) types.StreamChunk {
	if finishReason == "" {
		return chunk
	}
	return chunk.WithFinishReason(toFinishReason(finishReason))
}

func (*Provider) NewEventDecoder() provider.EventDecoder {
	return newEventDecoder()
}
