// Package aggregator drives one streaming completion request to
// completion: it pulls bytes off an io.Reader, frames them into SSE
// events, decodes each event through a provider's EventDecoder, and
// accumulates the results (text, usage, tool calls, finish reason)
// into a CompletionResult.
//
// The API is a pull-style Next/Finalize pair rather than a channel or
// callback — callers drive it themselves, one chunk at a time, the
// same way an iterator works. There is no goroutine here; the
// goroutine+channel bridge that turns this into push-style delivery
// (e.g. for an HTTP SSE response) lives above this package, closer to
// the transport that actually needs it.
package aggregator

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// ErrStreamConsumed is returned by Finalize when called a second time.
var ErrStreamConsumed = errors.New("aggregator: stream already finalized")

const readChunkSize = 4096

// Stream pulls and accumulates one streaming completion.
type Stream struct {
	reader  io.Reader
	decoder provider.EventDecoder
	parser  *sse.Parser

	readBuf []byte
	eof     bool

	content      strings.Builder
	model        string
	usage        types.Usage
	finishReason types.FinishReason
	toolAcc      types.ToolCallAccumulator

	finalized bool
}

// New wraps r (a live HTTP response body, typically) and decoder into
// a Stream ready to be pulled via Next. model is the request's model
// name, carried through to the finalized CompletionResult since most
// vendors' streamed chunks never repeat it.
func New(r io.Reader, decoder provider.EventDecoder, model string) *Stream {
	return &Stream{
		reader:  r,
		decoder: decoder,
		parser:  sse.New(),
		readBuf: make([]byte, readChunkSize),
		model:   model,
	}
}

// Next returns the next decoded chunk, folding it into the running
// aggregate as a side effect. ok is false once the stream is
// exhausted (end of input or an explicit terminal event), at which
// point err is nil unless something actually went wrong.
func (s *Stream) Next() (types.StreamChunk, bool, error) {
	for {
		if ev, ok := s.parser.Next(); ok {
			if s.decoder.IsTerminal(ev) {
				s.eof = true
				continue
			}
			chunk, ok, err := s.decoder.Decode(ev)
			if err != nil {
				return types.StreamChunk{}, false, err
			}
			if !ok {
				continue
			}
			s.accumulate(chunk)
			return chunk, true, nil
		}

		if s.eof {
			return types.StreamChunk{}, false, nil
		}

		n, err := s.reader.Read(s.readBuf)
		if n > 0 {
			s.parser.Feed(s.readBuf[:n])
		}
		if err != nil {
			if err == io.EOF {
				s.eof = true
				continue
			}
			return types.StreamChunk{}, false, fmt.Errorf("aggregator: reading stream: %w", err)
		}
	}
}

func (s *Stream) accumulate(chunk types.StreamChunk) {
	if text := chunk.Text(); text != "" {
		s.content.WriteString(text)
	}
	if chunk.HasUsage {
		s.usage = types.Merge(s.usage, chunk.Usage)
	}
	if chunk.HasFinish && chunk.FinishReason != "" {
		s.finishReason = chunk.FinishReason
	}
	if chunk.ToolCallDelta != nil {
		s.toolAcc.Apply(*chunk.ToolCallDelta)
	}
}

// CurrentContent returns the text accumulated so far, without
// consuming Finalize.
func (s *Stream) CurrentContent() string { return s.content.String() }

// CurrentUsage returns the usage accumulated so far, without
// consuming Finalize.
func (s *Stream) CurrentUsage() types.Usage { return s.usage }

// Finalize drains any remaining chunks and returns the aggregated
// result. It may be called exactly once; a second call returns
// ErrStreamConsumed.
func (s *Stream) Finalize() (types.CompletionResult, error) {
	if s.finalized {
		return types.CompletionResult{}, ErrStreamConsumed
	}
	for {
		_, ok, err := s.Next()
		if err != nil {
			return types.CompletionResult{}, err
		}
		if !ok {
			break
		}
	}
	s.finalized = true

	return types.CompletionResult{
		Content:      s.content.String(),
		Model:        s.model,
		Usage:        s.usage,
		FinishReason: s.finishReason,
		ToolCalls:    s.toolAcc.Finalize(),
	}, nil
}
