// Package types holds the vendor-neutral data model shared by every
// provider adapter: roles, messages, content parts, tool definitions,
// tool calls, usage counters, finish reasons, and stream chunks.
//
// Adapters translate to and from these types; nothing in this package
// knows which vendor it's talking to.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the speaker of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn in a conversation.
type Message struct {
	Role    Role
	Content Content

	// Name identifies a named participant (optional).
	Name string
	// ToolCallID is meaningful only on RoleTool messages: it identifies
	// which prior assistant tool call this message is the result of.
	ToolCallID string
	// ToolCalls is set on assistant messages that requested tool calls
	// on a previous turn.
	ToolCalls []ToolCall
}

// UserMessage builds a plain-text user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: Text(text)}
}

// SystemMessage builds a plain-text system message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: Text(text)}
}

// AssistantMessage builds a plain-text assistant message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: Text(text)}
}

// ToolResultMessage builds a tool-role message carrying a tool's output.
func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: Text(content), ToolCallID: toolCallID}
}

// Content is a message's payload: either plain text or an ordered list
// of content parts. Exactly one of Text or Parts is populated.
type Content struct {
	text  string
	parts []ContentPart
	isText bool
}

// Text wraps a plain-text content payload.
func Text(s string) Content {
	return Content{text: s, isText: true}
}

// Parts wraps a list of content parts as a message payload.
func Parts(parts ...ContentPart) Content {
	return Content{parts: parts}
}

// IsText reports whether this content is a plain string (as opposed to parts).
func (c Content) IsText() bool { return c.isText }

// AsText returns the text payload and true, or "" and false if this
// content is a parts list.
func (c Content) AsText() (string, bool) {
	if c.isText {
		return c.text, true
	}
	return "", false
}

// AsParts returns the parts payload, or nil if this content is plain text.
func (c Content) AsParts() []ContentPart {
	if c.isText {
		return nil
	}
	return c.parts
}

// ContentPartKind distinguishes text parts from image parts.
type ContentPartKind string

const (
	ContentPartText     ContentPartKind = "text"
	ContentPartImageURL ContentPartKind = "image_url"
)

// ContentPart is one element of a multi-part message payload: either
// text or an image reference. A part is either text or an image
// reference (a URL, optionally a data: URI with inline base64).
type ContentPart struct {
	Kind ContentPartKind

	// Text is populated when Kind == ContentPartText.
	Text string

	// ImageURL is populated when Kind == ContentPartImageURL. It may be
	// an http(s) URL or a data: URI of the form data:<media>;base64,<data>.
	ImageURL string
	// Detail is an optional vendor hint ("low"/"high"/"auto").
	Detail string
}

// NewTextPart builds a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Kind: ContentPartText, Text: text}
}

// NewImagePart builds an image content part.
func NewImagePart(url string) ContentPart {
	return ContentPart{Kind: ContentPartImageURL, ImageURL: url}
}

// ParseDataURI splits a data:<media>;base64,<data> URI into its media
// type and base64 payload. ok is false if url is not a base64 data URI,
// in which case callers should treat url as an ordinary remote URL.
func ParseDataURI(url string) (mediaType, data string, ok bool) {
	rest, found := strings.CutPrefix(url, "data:")
	if !found {
		return "", "", false
	}
	mediaType, data, found = strings.Cut(rest, ";base64,")
	if !found {
		return "", "", false
	}
	return mediaType, data, true
}

// Usage holds the four token counters tracked across providers.
// Different providers emit cumulative usage at different points in a
// stream (first event, every event, last event); the aggregator
// reconciles this with a field-wise maximum, which converges to the
// correct total regardless of emission pattern.
type Usage struct {
	InputTokens              int
	OutputTokens             int
	CacheReadInputTokens     int
	CacheCreationInputTokens int
}

// Total returns InputTokens + OutputTokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Merge returns the field-wise maximum of u and other.
func Merge(u, other Usage) Usage {
	return Usage{
		InputTokens:              max(u.InputTokens, other.InputTokens),
		OutputTokens:             max(u.OutputTokens, other.OutputTokens),
		CacheReadInputTokens:     max(u.CacheReadInputTokens, other.CacheReadInputTokens),
		CacheCreationInputTokens: max(u.CacheCreationInputTokens, other.CacheCreationInputTokens),
	}
}

// FinishReason is why generation stopped, normalized across vendors.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishLength         FinishReason = "length"
	FinishToolCalls      FinishReason = "tool-calls"
	FinishContentFilter  FinishReason = "content-filter"
	FinishUnknown        FinishReason = "unknown"
)

// Tool is a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON-schema object describing the function's
	// arguments. May be nil for a no-argument function.
	Parameters json.RawMessage
}

// ToolChoiceKind selects how the model is constrained to use tools.
type ToolChoiceKind string

const (
	ToolChoiceAuto     ToolChoiceKind = "auto"
	ToolChoiceNone     ToolChoiceKind = "none"
	ToolChoiceRequired ToolChoiceKind = "required"
	ToolChoiceFunction ToolChoiceKind = "function"
)

// ToolChoice constrains which tool(s) the model may call.
type ToolChoice struct {
	Kind         ToolChoiceKind
	FunctionName string // populated when Kind == ToolChoiceFunction
}

// ToolCall is a vendor-assigned tool invocation produced by the model.
// Arguments are passed through exactly as the vendor produced them.
type ToolCall struct {
	ID        string
	Type      string // always "function" in this client
	Name      string
	Arguments string // JSON-encoded arguments
}

// ParseArguments unmarshals Arguments into v.
func (tc ToolCall) ParseArguments(v any) error {
	return json.Unmarshal([]byte(tc.Arguments), v)
}

// ToolCallDelta is one incremental fragment of a tool call arriving
// during a stream. Consecutive deltas targeting the same Index
// concatenate their argument fragments (a non-empty ID or function name
// replaces the previous one); a new Index starts a new tool call.
type ToolCallDelta struct {
	Index             int
	ID                string
	HasID             bool
	FunctionName      string
	HasFunctionName   bool
	FunctionArguments string
	HasFunctionArgs   bool
}

// CompletionResult is the aggregated outcome of a (streamed or
// terminal) completion request.
type CompletionResult struct {
	Content      string
	Usage        Usage
	Model        string
	FinishReason FinishReason
	ToolCalls    []ToolCall
}

// ModelID is a parsed "<provider>/<model>" identifier.
type ModelID struct {
	Provider string
	Model    string
}

// ParseModelID parses a model identifier of the form "<provider>/<model>".
// Parsing fails if the slash is absent or either side is empty.
func ParseModelID(s string) (ModelID, error) {
	provider, model, found := strings.Cut(s, "/")
	if !found || provider == "" || model == "" {
		return ModelID{}, fmt.Errorf("invalid model identifier %q: want <provider>/<model>", s)
	}
	return ModelID{Provider: provider, Model: model}, nil
}

// String reassembles the identifier as "<provider>/<model>".
func (m ModelID) String() string {
	return m.Provider + "/" + m.Model
}
