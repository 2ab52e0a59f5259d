// Package openairesponses implements the Provider interface for
// OpenAI's Responses API (https://platform.openai.com/docs/api-reference/responses),
// the successor to chat completions.
//
// Two structural differences from chat completions drive this package's
// shape: the system prompt is a top-level "instructions" string rather
// than a message, and the streamed payload is a sequence of NAMED
// events (response.output_text.delta, response.function_call_arguments.delta,
// response.completed, ...) instead of one uniform chunk shape.
package openairesponses

import "encoding/json"

type wireRequest struct {
	Model           string          `json:"model"`
	Instructions    string          `json:"instructions,omitempty"`
	Input           []wireInputItem `json:"input"`
	Stream          bool            `json:"stream,omitempty"`
	MaxOutputTokens int             `json:"max_output_tokens,omitempty"`
	Temperature     *float64        `json:"temperature,omitempty"`
	TopP            *float64        `json:"top_p,omitempty"`
	Tools           []wireTool      `json:"tools,omitempty"`
	ToolChoice      json.RawMessage `json:"tool_choice,omitempty"`
}

// wireInputItem covers both a plain conversational message and a
// function-call-output item (the result of a tool call fed back in on
// the next turn).
type wireInputItem struct {
	Type   string `json:"type,omitempty"` // "function_call_output" or "" for a message
	Role   string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`

	CallID string `json:"call_id,omitempty"`
	Output string `json:"output,omitempty"`
}

type wireTool struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// --- non-streaming response types ---

type wireResponse struct {
	ID     string           `json:"id"`
	Model  string           `json:"model"`
	Status string           `json:"status"`
	Output []wireOutputItem `json:"output"`
	Usage  wireUsage        `json:"usage"`
}

// wireOutputItem is tagged by Type: "message" carries Content blocks,
// "function_call" carries CallID/Name/Arguments directly.
type wireOutputItem struct {
	Type    string               `json:"type"`
	Content []wireOutputContent `json:"content,omitempty"`

	CallID    string `json:"call_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

type wireOutputContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// --- streaming event types ---

type wireStreamEvent struct {
	Type string `json:"type"`

	Delta  string `json:"delta,omitempty"`   // output_text.delta, function_call_arguments.delta
	ItemID string `json:"item_id,omitempty"` // ties a delta back to the item it belongs to

	Item *wireStreamItem `json:"item,omitempty"` // output_item.added

	Response *wireResponse `json:"response,omitempty"` // response.completed
}

type wireStreamItem struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	CallID string `json:"call_id,omitempty"`
	Name   string `json:"name,omitempty"`
}
