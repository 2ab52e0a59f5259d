// Package anthropic implements the Provider interface for Anthropic's
// Messages API (https://docs.anthropic.com/en/api/messages).
//
// Three things distinguish this wire format from the OpenAI family:
//   - "system" is a top-level string, not a message in the list
//   - "max_tokens" is required — the API rejects a request without it
//   - streaming sends NAMED events (message_start, content_block_delta,
//     message_delta, message_stop, ...), each with its own JSON shape,
//     instead of one uniform chunk shape repeated every event
package anthropic

import "encoding/json"

const apiVersion = "2023-06-01"

// defaultMaxTokens is sent when the caller doesn't set one. Anthropic
// has no server-side default, unlike every other provider in this client.
const defaultMaxTokens = 4096

// --- request types ---

type wireRequest struct {
	Model         string          `json:"model"`
	MaxTokens     int             `json:"max_tokens"`
	System        string          `json:"system,omitempty"`
	Messages      []wireMessage   `json:"messages"`
	Stream        bool            `json:"stream,omitempty"`
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	Tools         []wireTool      `json:"tools,omitempty"`
	ToolChoice    json.RawMessage `json:"tool_choice,omitempty"`
	StopSequences []string        `json:"stop_sequences,omitempty"`
}

type wireMessage struct {
	Role    string      `json:"role"`
	Content wireContent `json:"content"`
}

// wireContent is either a plain string or a list of content blocks.
// Anthropic accepts both shapes for "content"; we emit the block form
// for parts-list content (even a single part) and for tool results,
// and the plain string form for plain-text content —
// matching the reference client's choice to keep simple text messages
// simple on the wire.
type wireContent struct {
	text   string
	blocks []wireContentBlock
}

func (c wireContent) MarshalJSON() ([]byte, error) {
	if c.blocks == nil {
		return json.Marshal(c.text)
	}
	return json.Marshal(c.blocks)
}

type wireContentBlock struct {
	Type string `json:"type"`

	// type == "text"
	Text string `json:"text,omitempty"`

	// type == "image"
	Source *wireImageSource `json:"source,omitempty"`

	// type == "tool_use" (assistant turn echo, rarely sent by callers)
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// type == "tool_result"
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type wireImageSource struct {
	Type      string `json:"type"` // "base64" or "url"
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`
	URL       string `json:"url,omitempty"`
}

type wireTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// --- non-streaming response types ---

type wireResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []wireContentBlock `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      wireUsage          `json:"usage"`
}

type wireUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// --- streaming event types ---
//
// Every SSE payload carries a "type" discriminant. We decode into one
// wrapper struct per call and switch on Type, leaving irrelevant fields
// at their zero value — Go has no tagged union, so this plays the role
// TypeScript's discriminated-union narrowing would play there.

type wireStreamEvent struct {
	Type         string           `json:"type"`
	Message      *wireEventMessage `json:"message,omitempty"`       // message_start
	Index        int              `json:"index"`                    // content_block_start/delta/stop
	ContentBlock *wireContentBlock `json:"content_block,omitempty"` // content_block_start
	Delta        *wireEventDelta   `json:"delta,omitempty"`         // content_block_delta, message_delta
	Usage        *wireUsage        `json:"usage,omitempty"`         // message_delta
}

type wireEventMessage struct {
	ID    string    `json:"id"`
	Model string    `json:"model"`
	Usage wireUsage `json:"usage"`
}

// wireEventDelta covers both content_block_delta's delta (text_delta,
// input_json_delta, thinking_delta, signature_delta) and message_delta's
// delta (stop_reason only) in one struct.
type wireEventDelta struct {
	Type string `json:"type,omitempty"`

	Text        string `json:"text,omitempty"`         // text_delta
	PartialJSON string `json:"partial_json,omitempty"` // input_json_delta
	Thinking    string `json:"thinking,omitempty"`      // thinking_delta
	Signature   string `json:"signature,omitempty"`     // signature_delta

	StopReason string `json:"stop_reason,omitempty"` // message_delta
}
