package aggregator

import (
	"strings"
	"testing"

	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDecoder treats each event's Data as literal chunk text, and
// treats the literal string "[DONE]" as the terminal marker — enough
// to exercise the aggregator's loop without depending on any real
// provider wire format.
type testDecoder struct{}

func (testDecoder) IsTerminal(ev sse.Event) bool { return sse.IsDone(ev.Data) }

func (testDecoder) Decode(ev sse.Event) (types.StreamChunk, bool, error) {
	return types.TextChunk(ev.Data), true, nil
}

func TestStreamAccumulatesTextAcrossChunks(t *testing.T) {
	body := "data: Hello\n\ndata: , world\n\ndata: [DONE]\n\n"
	s := New(strings.NewReader(body), testDecoder{}, "gpt-4o-mini")

	result, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", result.Content)
	assert.Equal(t, "gpt-4o-mini", result.Model)
}

func TestFinalizeTwiceReturnsStreamConsumed(t *testing.T) {
	s := New(strings.NewReader("data: hi\n\n"), testDecoder{}, "")
	_, err := s.Finalize()
	require.NoError(t, err)

	_, err = s.Finalize()
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestGeminiStyleStreamEndsOnConnectionCloseWithoutSentinel(t *testing.T) {
	body := "data: one\n\ndata: two\n\n"
	s := New(strings.NewReader(body), testDecoder{}, "")

	result, err := s.Finalize()
	require.NoError(t, err)
	assert.Equal(t, "onetwo", result.Content)
}

func TestCurrentContentObservesWithoutConsuming(t *testing.T) {
	s := New(strings.NewReader("data: partial\n\n"), testDecoder{}, "")
	_, ok, err := s.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "partial", s.CurrentContent())
}

func TestToolCallAccumulationAcrossStream(t *testing.T) {
	d := toolDecoderFunc(func(ev sse.Event) (types.StreamChunk, bool, error) {
		chunk := types.EmptyChunk(types.ChunkToolDelta)
		switch ev.Data {
		case "start":
			chunk.ToolCallDelta = &types.ToolCallDelta{Index: 0, HasID: true, ID: "tu_1", HasFunctionName: true, FunctionName: "get_weather"}
		case "args1":
			chunk.ToolCallDelta = &types.ToolCallDelta{Index: 0, HasFunctionArgs: true, FunctionArguments: `{"location":`}
		case "args2":
			chunk.ToolCallDelta = &types.ToolCallDelta{Index: 0, HasFunctionArgs: true, FunctionArguments: `"Tokyo"}`}
		}
		return chunk, true, nil
	})

	body := "data: start\n\ndata: args1\n\ndata: args2\n\ndata: [DONE]\n\n"
	s := New(strings.NewReader(body), d, "")

	result, err := s.Finalize()
	require.NoError(t, err)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, `{"location":"Tokyo"}`, result.ToolCalls[0].Arguments)
}

type toolDecoderFunc func(sse.Event) (types.StreamChunk, bool, error)

func (f toolDecoderFunc) IsTerminal(ev sse.Event) bool { return sse.IsDone(ev.Data) }
func (f toolDecoderFunc) Decode(ev sse.Event) (types.StreamChunk, bool, error) { return f(ev) }
