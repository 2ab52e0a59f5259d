// Package provider defines the Provider interface that every LLM
// backend adapter implements, plus the request configuration shared
// across adapters.
//
// Each backend (Cerebras, OpenAI Responses, Anthropic, Gemini) lives in
// its own subpackage and exposes a constructor returning a Provider.
// Nothing outside this package and its subpackages needs to know which
// wire format a given backend actually speaks.
package provider

import (
	"fmt"
	"net/http"

	"github.com/jannisai/llmsdk/internal/sse"
	"github.com/jannisai/llmsdk/internal/types"
)

// RequestConfig carries the per-request knobs a caller can set,
// independent of which provider ends up handling the request.
type RequestConfig struct {
	Model       string
	Messages    []types.Message
	System      string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	Tools       []types.Tool
	ToolChoice  *types.ToolChoice
	Stop        []string
	Stream      bool

	// Extra holds additional provider-specific fields merged shallowly
	// into the outgoing request body (see DOMAIN STACK: gjson/sjson).
	Extra map[string]any
}

// EventDecoder turns raw SSE events into typed stream chunks for one
// in-flight streaming request. A provider constructs a fresh decoder
// per request since several providers carry state across events (the
// running tool-call index, the last-seen usage totals).
type EventDecoder interface {
	// Decode consumes one SSE event and returns zero or one chunk. ok is
	// false when the event carried no chunk-worthy payload (a comment,
	// a ping, a provider-specific bookkeeping event).
	Decode(ev sse.Event) (types.StreamChunk, bool, error)

	// IsTerminal reports whether ev marks the end of the stream. Most
	// OpenAI-compatible wire formats emit a literal "[DONE]" sentinel;
	// Gemini emits none and relies on connection close instead, so its
	// decoder always returns false here.
	IsTerminal(ev sse.Event) bool
}

// Provider is the interface every backend adapter satisfies. Go
// interfaces are implicit, so a new backend needs only to provide
// these methods — no registration beyond the factory below.
type Provider interface {
	// Name identifies the provider for logging, metrics labels, and
	// error messages, e.g. "cerebras", "anthropic".
	Name() string

	// BaseURL returns the default API base URL for this provider.
	BaseURL() string

	// Headers returns the HTTP headers required to authenticate a
	// request with apiKey, including content-type.
	Headers(apiKey string) http.Header

	// StreamURL returns the request URL for a streaming request against
	// the given base URL and model.
	StreamURL(baseURL, model string) string

	// CompleteURL returns the request URL for a non-streaming request.
	CompleteURL(baseURL, model string) string

	// BuildStreamBody serializes cfg into this provider's wire format
	// for a streaming request.
	BuildStreamBody(cfg RequestConfig) ([]byte, error)

	// BuildCompleteBody serializes cfg into this provider's wire format
	// for a non-streaming request.
	BuildCompleteBody(cfg RequestConfig) ([]byte, error)

	// NewEventDecoder returns a fresh EventDecoder for one streaming
	// request's lifetime.
	NewEventDecoder() EventDecoder

	// ParseResponse decodes a non-streaming response body into a
	// CompletionResult.
	ParseResponse(body []byte) (types.CompletionResult, error)
}

// Factory constructs a Provider by name. It exists so internal/executor
// and the public llm package never need to import the four adapter
// subpackages directly — only whoever builds the factory does.
type Factory func(name string) (Provider, error)

// ErrUnknownProvider is returned by a Factory when name matches none of
// the registered adapters.
type ErrUnknownProvider struct {
	Name string
}

func (e *ErrUnknownProvider) Error() string {
	return fmt.Sprintf("unknown provider %q", e.Name)
}
