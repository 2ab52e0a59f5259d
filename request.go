package llm

import "github.com/jannisai/llmsdk/internal/types"

// Request is a provider-agnostic completion request. Model must be of
// the form "<provider>/<model>", e.g. "anthropic/claude-3-5-sonnet-20241022";
// the provider segment selects which adapter handles the request.
type Request struct {
	Model       string
	Messages    []types.Message
	System      string
	MaxTokens   int
	Temperature *float64
	TopP        *float64
	Tools       []types.Tool
	ToolChoice  *types.ToolChoice
	Stop        []string

	// Extra passes additional provider-specific fields straight through
	// to the outgoing request body, merged at the top level.
	Extra map[string]any
}
