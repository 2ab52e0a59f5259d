package openairesponses

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/types"
)

// Provider implements provider.Provider for OpenAI's Responses API.
type Provider struct{}

// New returns an OpenAI Responses API provider.
func New() *Provider { return &Provider{} }

func (*Provider) Name() string    { return "openai" }
func (*Provider) BaseURL() string { return "https://api.openai.com/v1" }

func (*Provider) Headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

func (*Provider) StreamURL(baseURL, _ string) string   { return baseURL + "/responses" }
func (*Provider) CompleteURL(baseURL, _ string) string { return baseURL + "/responses" }

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
		Model:           cfg.Model,
		Instructions:    cfg.System,
		Stream:          stream,
		MaxOutputTokens: cfg.MaxTokens,
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
	}

	for _, m := range cfg.Messages {
		item, systemText, isSystem := toInputItem(m)
		if isSystem {
			if req.Instructions == "" {
				req.Instructions = systemText
			} else {
				req.Instructions += "\n" + systemText
			}
			continue
		}
		req.Input = append(req.Input, item)
	}

	for _, t := range cfg.Tools {
		req.Tools = append(req.Tools, wireTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
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
		return nil, fmt.Errorf("openairesponses: marshaling request: %w", err)
	}
	return provider.MergeExtra(body, cfg.Extra)
}

// toInputItem translates a unified Message into a Responses API input
// item. A tool-role message becomes a function_call_output item
// instead of an ordinary role+content message — the Responses API has
// no "tool" role on the wire.
func toInputItem(m types.Message) (item wireInputItem, systemText string, isSystem bool) {
	if m.Role == types.RoleSystem {
		text, _ := m.Content.AsText()
		return wireInputItem{}, text, true
	}
	if m.Role == types.RoleTool {
		text, _ := m.Content.AsText()
		return wireInputItem{Type: "function_call_output", CallID: m.ToolCallID, Output: text}, "", false
	}
	text, _ := m.Content.AsText()
	return wireInputItem{Role: string(m.Role), Content: text}, "", false
}

// finishFromStatus maps the Responses API's top-level status field
// onto a normalized finish reason.
func finishFromStatus(status string) types.FinishReason {
	switch status {
	case "completed":
		return types.FinishStop
	case "incomplete":
		return types.FinishLength
	default:
		return types.FinishUnknown
	}
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
		return json.Marshal(map[string]string{"type": "function", "name": tc.FunctionName})
	default:
		return nil, fmt.Errorf("openairesponses: unknown tool choice kind %q", tc.Kind)
	}
}

// ParseResponse decodes a non-streaming Responses API response. The
// output array mixes "message" and "function_call" items; finish
// reason is not an explicit field on this API, so we derive it: any
// function_call item present means the model wants tool calls,
// otherwise the top-level status decides (see finishFromStatus).
func (*Provider) ParseResponse(body []byte) (types.CompletionResult, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.CompletionResult{}, fmt.Errorf("openairesponses: decoding response: %w", err)
	}

	var text string
	var calls []types.ToolCall
	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					text += c.Text
				}
			}
		case "function_call":
			calls = append(calls, types.ToolCall{
				ID:        item.CallID,
				Type:      "function",
				Name:      item.Name,
				Arguments: item.Arguments,
			})
		}
	}

	var finish types.FinishReason
	if len(calls) > 0 {
		finish = types.FinishToolCalls
	} else {
		finish = finishFromStatus(resp.Status)
	}

	return types.CompletionResult{
		Content: text,
		Model:   resp.Model,
		Usage: types.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		FinishReason: finish,
		ToolCalls:    calls,
	}, nil
}
