// Package stream bridges a synchronous llm.Stream into OpenAI-compatible
// Server-Sent Events over an http.ResponseWriter, and buffers token
// accounting for the caller to report once the bridge finishes.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jannisai/llmsdk/internal/types"
)

// ---------------------------------------------------------------------------
// OpenAI-compatible SSE response types
// ---------------------------------------------------------------------------

// These structs define the JSON shape OpenAI-compatible clients expect
// in each SSE event. The gateway's wire format matches that shape, so
// llm.Stream's chunks are translated into it before being sent.

type sseChunk struct {
	ID      string      `json:"id"`
	Object  string      `json:"object"`
	Model   string      `json:"model"`
	Choices []sseChoice `json:"choices"`

	// Usage is included only on the final chunk. The pointer + omitempty
	// combo means: if Usage is nil, don't include the "usage" key at
	// all — matching OpenAI's behavior where usage only appears on the
	// last event.
	Usage *sseUsage `json:"usage,omitempty"`
}

type sseChoice struct {
	Index int      `json:"index"`
	Delta sseDelta `json:"delta"`

	// FinishReason is null for every chunk except the final one. A
	// plain string can't represent JSON null (it serializes as ""),
	// so this is a pointer.
	FinishReason *string `json:"finish_reason"`
}

type sseDelta struct {
	Content string `json:"content,omitempty"`
}

type sseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ---------------------------------------------------------------------------
// producer: bridges the pull-style llm.Stream into a channel
// ---------------------------------------------------------------------------

// source is the subset of *llm.Stream this package depends on — kept
// narrow so tests can drive it with a fake.
type source interface {
	Next() (types.StreamChunk, bool, error)
	Finalize() (types.CompletionResult, error)
}

// bridgeChunk is one frame handed from the producer goroutine to Write.
type bridgeChunk struct {
	Delta        string
	Done         bool
	FinishReason types.FinishReason
	Usage        types.Usage
	Err          error
}

// produce pulls chunks from src and republishes them on a channel,
// closing it when the stream ends. src is pull-style, and this
// goroutine is what turns it into the push-style channel the SSE
// writer wants.
func produce(ctx context.Context, src source) <-chan bridgeChunk {
	ch := make(chan bridgeChunk)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				ch <- bridgeChunk{Done: true, Err: ctx.Err()}
				return
			default:
			}

			chunk, ok, err := src.Next()
			if err != nil {
				ch <- bridgeChunk{Done: true, Err: err}
				return
			}
			if !ok {
				break
			}
			if text := chunk.Text(); text != "" {
				ch <- bridgeChunk{Delta: text}
			}
		}

		result, err := src.Finalize()
		if err != nil {
			ch <- bridgeChunk{Done: true, Err: err}
			return
		}
		ch <- bridgeChunk{
			Done:         true,
			FinishReason: result.FinishReason,
			Usage:        result.Usage,
		}
	}()
	return ch
}

// ---------------------------------------------------------------------------
// SSE Writer
// ---------------------------------------------------------------------------

// Write pulls chunks from src and writes them to w as OpenAI-compatible
// Server-Sent Events, under id/model in every event. It returns the
// final usage once the stream completes, or an error if the underlying
// stream failed mid-flight (in which case no [DONE] sentinel is sent).
func Write(ctx context.Context, w http.ResponseWriter, id, model string, src source) (types.Usage, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return types.Usage{}, fmt.Errorf("response writer does not support flushing (http.Flusher)")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := produce(ctx, src)

	var usage types.Usage
	for chunk := range ch {
		if chunk.Err != nil {
			return usage, chunk.Err
		}

		if !chunk.Done {
			event := sseChunk{
				ID:     id,
				Object: "chat.completion.chunk",
				Model:  model,
				Choices: []sseChoice{{Index: 0, Delta: sseDelta{Content: chunk.Delta}}},
			}
			if err := writeEvent(w, flusher, event); err != nil {
				return usage, err
			}
			continue
		}

		usage = chunk.Usage
		reason := string(chunk.FinishReason)
		event := sseChunk{
			ID:      id,
			Object:  "chat.completion.chunk",
			Model:   model,
			Choices: []sseChoice{{Index: 0, Delta: sseDelta{}, FinishReason: &reason}},
			Usage: &sseUsage{
				PromptTokens:     usage.InputTokens,
				CompletionTokens: usage.OutputTokens,
				TotalTokens:      usage.Total(),
			},
		}
		if err := writeEvent(w, flusher, event); err != nil {
			return usage, err
		}
	}

	if _, err := fmt.Fprintf(w, "data: [DONE]\n\n"); err != nil {
		return usage, fmt.Errorf("writing SSE done marker: %w", err)
	}
	flusher.Flush()
	return usage, nil
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event sseChunk) error {
	jsonBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling SSE chunk: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonBytes); err != nil {
		return fmt.Errorf("writing SSE event: %w", err)
	}
	flusher.Flush()
	return nil
}
