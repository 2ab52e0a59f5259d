package llm

import (
	"io"

	"github.com/jannisai/llmsdk/internal/aggregator"
	"github.com/jannisai/llmsdk/internal/types"
)

// Stream delivers one streaming completion's chunks, pulled one at a
// time with Next. Call Close once done with it, even after an error or
// after Finalize — it owns the underlying HTTP response body.
type Stream struct {
	inner *aggregator.Stream
	body  io.Closer
}

// Next returns the next chunk. ok is false once the stream is
// exhausted; err is non-nil only on an actual failure.
func (s *Stream) Next() (types.StreamChunk, bool, error) {
	chunk, ok, err := s.inner.Next()
	if err != nil {
		return types.StreamChunk{}, false, translateError(err)
	}
	return chunk, ok, nil
}

// CurrentContent returns the text accumulated so far without consuming
// Finalize.
func (s *Stream) CurrentContent() string { return s.inner.CurrentContent() }

// CurrentUsage returns the usage accumulated so far without consuming
// Finalize.
func (s *Stream) CurrentUsage() types.Usage { return s.inner.CurrentUsage() }

// Finalize drains any remaining chunks and returns the aggregated
// result. It may be called exactly once.
func (s *Stream) Finalize() (types.CompletionResult, error) {
	result, err := s.inner.Finalize()
	if err != nil {
		return types.CompletionResult{}, translateError(err)
	}
	return result, nil
}

// Close releases the underlying HTTP connection. Safe to call more
// than once.
func (s *Stream) Close() error {
	return s.body.Close()
}
