package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/types"
)

// Provider implements provider.Provider for Anthropic's Messages API.
type Provider struct{}

// New returns an Anthropic provider.
func New() *Provider { return &Provider{} }

func (*Provider) Name() string { return "anthropic" }

func (*Provider) BaseURL() string { return "https://api.anthropic.com/v1" }

// Headers sets the two Anthropic-specific auth headers. Unlike the
// OpenAI family's "Authorization: Bearer", Anthropic uses a bespoke
// "x-api-key" header plus a date-versioned "anthropic-version" header —
// there is no URL-path or query-string versioning here.
func (*Provider) Headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", apiVersion)
	return h
}

func (*Provider) StreamURL(baseURL, _ string) string   { return baseURL + "/messages" }
func (*Provider) CompleteURL(baseURL, _ string) string { return baseURL + "/messages" }

func (p *Provider) BuildStreamBody(cfg provider.RequestConfig) ([]byte, error) {
	return p.buildBody(cfg, true)
}

func (p *Provider) BuildCompleteBody(cfg provider.RequestConfig) ([]byte, error) {
	return p.buildBody(cfg, false)
}

func (*Provider) buildBody(cfg provider.RequestConfig, stream bool) ([]byte, error) {
	if err := provider.ValidateTools(cfg.Tools); err != nil {
		return nil, err
	}

	req := wireRequest{
		Model:         cfg.Model,
		System:        cfg.System,
		Stream:        stream,
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
		StopSequences: cfg.Stop,
	}

	if cfg.MaxTokens > 0 {
		req.MaxTokens = cfg.MaxTokens
	} else {
		req.MaxTokens = defaultMaxTokens
	}

	for _, m := range cfg.Messages {
		wm, systemText, isSystem := toWireMessage(m)
		if isSystem {
			if req.System == "" {
				req.System = systemText
			} else {
				req.System += "\n" + systemText
			}
			continue
		}
		req.Messages = append(req.Messages, wm)
	}

	for _, t := range cfg.Tools {
		req.Tools = append(req.Tools, wireTool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}

	if cfg.ToolChoice != nil {
		tc, err := toWireToolChoice(*cfg.ToolChoice)
		if err != nil {
			return nil, err
		}
		req.ToolChoice = tc
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshaling request: %w", err)
	}
	return provider.MergeExtra(body, cfg.Extra)
}

// toWireMessage translates a unified Message into Anthropic's shape. A
// tool-role message becomes a user-role message carrying a single
// tool_result block, mirroring how Anthropic folds tool results back
// into the conversation (it has no separate "tool" role on the wire).
func toWireMessage(m types.Message) (wm wireMessage, systemText string, isSystem bool) {
	if m.Role == types.RoleSystem {
		text, _ := m.Content.AsText()
		return wireMessage{}, text, true
	}

	if m.Role == types.RoleTool {
		text, _ := m.Content.AsText()
		return wireMessage{
			Role: "user",
			Content: wireContent{blocks: []wireContentBlock{{
				Type:      "tool_result",
				ToolUseID: m.ToolCallID,
				Content:   text,
			}}},
		}, "", false
	}

	role := string(m.Role)

	if text, ok := m.Content.AsText(); ok {
		return wireMessage{Role: role, Content: wireContent{text: text}}, "", false
	}

	var blocks []wireContentBlock
	for _, part := range m.Content.AsParts() {
		switch part.Kind {
		case types.ContentPartText:
			blocks = append(blocks, wireContentBlock{Type: "text", Text: part.Text})
		case types.ContentPartImageURL:
			blocks = append(blocks, wireContentBlock{Type: "image", Source: toImageSource(part.ImageURL)})
		}
	}
	return wireMessage{Role: role, Content: wireContent{blocks: blocks}}, "", false
}

// toImageSource splits a data: URI into Anthropic's base64 source
// shape, falling back to a plain URL source for ordinary links.
func toImageSource(url string) *wireImageSource {
	if mediaType, data, ok := types.ParseDataURI(url); ok {
		return &wireImageSource{Type: "base64", MediaType: mediaType, Data: data}
	}
	return &wireImageSource{Type: "url", URL: url}
}

func toWireToolChoice(tc types.ToolChoice) (json.RawMessage, error) {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return json.Marshal(map[string]string{"type": "auto"})
	case types.ToolChoiceNone:
		return json.Marshal(map[string]string{"type": "none"})
	case types.ToolChoiceRequired:
		return json.Marshal(map[string]string{"type": "any"})
	case types.ToolChoiceFunction:
		return json.Marshal(map[string]string{"type": "tool", "name": tc.FunctionName})
	default:
		return nil, fmt.Errorf("anthropic: unknown tool choice kind %q", tc.Kind)
	}
}

// ParseResponse decodes a non-streaming /v1/messages response. Content
// arrives as an ordered list of blocks that may mix text and tool_use;
// we concatenate text blocks and collect every tool_use block as a
// completed ToolCall (no accumulator needed — non-streaming tool
// arguments arrive whole).
func (*Provider) ParseResponse(body []byte) (types.CompletionResult, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.CompletionResult{}, fmt.Errorf("anthropic: decoding response: %w", err)
	}

	var text string
	var calls []types.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text += block.Text
		case "tool_use":
			calls = append(calls, types.ToolCall{
				ID:        block.ID,
				Type:      "function",
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	return types.CompletionResult{
		Content: text,
		Model:   resp.Model,
		Usage: types.Usage{
			InputTokens:              resp.Usage.InputTokens,
			OutputTokens:             resp.Usage.OutputTokens,
			CacheReadInputTokens:     resp.Usage.CacheReadInputTokens,
			CacheCreationInputTokens: resp.Usage.CacheCreationInputTokens,
		},
		FinishReason: toFinishReason(resp.StopReason),
		ToolCalls:    calls,
	}, nil
}

func toFinishReason(stopReason string) types.FinishReason {
	switch stopReason {
	case "end_turn", "stop_sequence":
		return types.FinishStop
	case "max_tokens":
		return types.FinishLength
	case "tool_use":
		return types.FinishToolCalls
	default:
		return types.FinishUnknown
	}
}
