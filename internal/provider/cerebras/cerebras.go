package cerebras

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/types"
)

// Provider implements provider.Provider for Cerebras's chat completions API.
type Provider struct{}

// New returns a Cerebras provider.
func New() *Provider { return &Provider{} }

func (*Provider) Name() string    { return "cerebras" }
func (*Provider) BaseURL() string { return "https://api.cerebras.ai/v1" }

func (*Provider) Headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

func (*Provider) StreamURL(baseURL, _ string) string   { return baseURL + "/chat/completions" }
func (*Provider) CompleteURL(baseURL, _ string) string { return baseURL + "/chat/completions" }

func (p *Provider) BuildStreamBody(cfg provider.RequestConfig) ([]byte, error) {
	req, err := p.toWireRequest(cfg)
	if err != nil {
		return nil, err
	}
	req.Stream = true
	req.StreamOptions = &streamOptions{IncludeUsage: true}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cerebras: marshaling request: %w", err)
	}
	return provider.MergeExtra(body, cfg.Extra)
}

func (p *Provider) BuildCompleteBody(cfg provider.RequestConfig) ([]byte, error) {
	req, err := p.toWireRequest(cfg)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cerebras: marshaling request: %w", err)
	}
	return provider.MergeExtra(body, cfg.Extra)
}

func (*Provider) toWireRequest(cfg provider.RequestConfig) (wireRequest, error) {
	if err := provider.ValidateTools(cfg.Tools); err != nil {
		return wireRequest{}, err
	}

	req := wireRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		TopP:        cfg.TopP,
		Stop:        cfg.Stop,
	}

	if cfg.System != "" {
		req.Messages = append(req.Messages, wireMessage{Role: "system", Content: cfg.System})
	}
	for _, m := range cfg.Messages {
		req.Messages = append(req.Messages, toWireMessage(m))
	}

	for _, t := range cfg.Tools {
		req.Tools = append(req.Tools, wireTool{
			Type:     "function",
			Function: wireFunction{Name: t.Name, Description: t.Description, Parameters: t.Parameters},
		})
	}

	if cfg.ToolChoice != nil {
		tc, err := toWireToolChoice(*cfg.ToolChoice)
		if err != nil {
			return wireRequest{}, err
		}
		req.ToolChoice = tc
	}

	return req, nil
}

func toWireMessage(m types.Message) wireMessage {
	text, _ := m.Content.AsText()
	wm := wireMessage{
		Role:       string(m.Role),
		Content:    text,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		wm.ToolCalls = append(wm.ToolCalls, wireToolCall{
			ID:   tc.ID,
			Type: "function",
			Function: wireFunctionCall{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}
	return wm
}

func toWireToolChoice(tc types.ToolChoice) (json.RawMessage, error) {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return json.Marshal("auto")
	case types.ToolChoiceNone:
		return json.Marshal("none")
	case types.ToolChoiceRequired:
		return json.Marshal("required")
	case types.ToolChoiceFunction:
		return json.Marshal(map[string]any{
			"type":     "function",
			"function": map[string]string{"name": tc.FunctionName},
		})
	default:
		return nil, fmt.Errorf("cerebras: unknown tool choice kind %q", tc.Kind)
	}
}

// ParseResponse decodes a non-streaming chat-completions response.
func (*Provider) ParseResponse(body []byte) (types.CompletionResult, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.CompletionResult{}, fmt.Errorf("cerebras: decoding response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return types.CompletionResult{}, fmt.Errorf("cerebras: response had no choices")
	}
	choice := resp.Choices[0]

	var calls []types.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, types.ToolCall{
			ID:        tc.ID,
			Type:      "function",
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return types.CompletionResult{
		Content: choice.Message.Content,
		Model:   resp.Model,
		Usage: types.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		FinishReason: parseFinishReason(choice.FinishReason),
		ToolCalls:    calls,
	}, nil
}

func parseFinishReason(s string) types.FinishReason {
	switch s {
	case "stop":
		return types.FinishStop
	case "length":
		return types.FinishLength
	case "tool_calls":
		return types.FinishToolCalls
	case "content_filter":
		return types.FinishContentFilter
	default:
		return types.FinishUnknown
	}
}
