package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/types"
)

// Provider implements provider.Provider for Google's Gemini API.
type Provider struct{}

// New returns a Gemini provider.
func New() *Provider { return &Provider{} }

func (*Provider) Name() string    { return "gemini" }
func (*Provider) BaseURL() string { return "https://generativelanguage.googleapis.com/v1beta" }

// Headers authenticates with the x-goog-api-key header, Google's
// default scheme. The ?key= query-parameter form the API also accepts
// is left to callers who build their own URL, since most deployments
// prefer not to put credentials in a URL that ends up in access logs.
func (*Provider) Headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("x-goog-api-key", apiKey)
	return h
}

func (*Provider) StreamURL(baseURL, model string) string {
	return fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", baseURL, model)
}

func (*Provider) CompleteURL(baseURL, model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent", baseURL, model)
}

// BuildStreamBody and BuildCompleteBody produce the same body shape:
// Gemini distinguishes streaming from non-streaming entirely by URL,
// not by a field in the request.
func (p *Provider) BuildStreamBody(cfg provider.RequestConfig) ([]byte, error) {
	return p.buildBody(cfg)
}

func (p *Provider) BuildCompleteBody(cfg provider.RequestConfig) ([]byte, error) {
	return p.buildBody(cfg)
}

func (*Provider) buildBody(cfg provider.RequestConfig) ([]byte, error) {
	if err := provider.ValidateTools(cfg.Tools); err != nil {
		return nil, err
	}

	req := wireRequest{}
	systemText := cfg.System

	for _, m := range cfg.Messages {
		if m.Role == types.RoleSystem {
			text, _ := m.Content.AsText()
			if systemText == "" {
				systemText = text
			} else {
				systemText += "\n" + text
			}
			continue
		}
		req.Contents = append(req.Contents, toWireContent(m))
	}

	if systemText != "" {
		req.SystemInstruction = &wireContent{Parts: []wirePart{{Text: systemText}}}
	}

	if cfg.MaxTokens > 0 || cfg.Temperature != nil || cfg.TopP != nil || len(cfg.Stop) > 0 {
		req.GenerationConfig = &wireGenConfig{
			MaxOutputTokens: cfg.MaxTokens,
			Temperature:     cfg.Temperature,
			TopP:            cfg.TopP,
			StopSequences:   cfg.Stop,
		}
	}

	if len(cfg.Tools) > 0 {
		var decls []wireFunctionDecl
		for _, t := range cfg.Tools {
			var params any
			if len(t.Parameters) > 0 {
				if err := json.Unmarshal(t.Parameters, &params); err != nil {
					return nil, fmt.Errorf("gemini: tool %q parameters: %w", t.Name, err)
				}
			}
			decls = append(decls, wireFunctionDecl{Name: t.Name, Description: t.Description, Parameters: params})
		}
		req.Tools = []wireTool{{FunctionDeclarations: decls}}
	}

	if cfg.ToolChoice != nil {
		req.ToolConfig = toWireToolConfig(*cfg.ToolChoice)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshaling request: %w", err)
	}
	return provider.MergeExtra(body, cfg.Extra)
}

// toWireContent maps a unified Message onto Gemini's role+parts shape.
// Role mapping: assistant→model, tool→function, user stays user.
func toWireContent(m types.Message) wireContent {
	role := string(m.Role)
	switch m.Role {
	case types.RoleAssistant:
		role = "model"
	case types.RoleTool:
		role = "function"
	}

	if m.Role == types.RoleTool {
		var response map[string]any
		text, _ := m.Content.AsText()
		if err := json.Unmarshal([]byte(text), &response); err != nil {
			response = map[string]any{"result": text}
		}
		return wireContent{Role: role, Parts: []wirePart{{
			FunctionResponse: &wireFunctionResponse{Name: m.Name, Response: response},
		}}}
	}

	if text, ok := m.Content.AsText(); ok {
		return wireContent{Role: role, Parts: []wirePart{{Text: text}}}
	}

	var parts []wirePart
	for _, part := range m.Content.AsParts() {
		switch part.Kind {
		case types.ContentPartText:
			parts = append(parts, wirePart{Text: part.Text})
		case types.ContentPartImageURL:
			// Inline image data requires parsing the actual media type
			// out of the data URI rather than assuming a fixed type.
			if mediaType, data, ok := types.ParseDataURI(part.ImageURL); ok {
				parts = append(parts, wirePart{InlineData: &wireInlineData{MimeType: mediaType, Data: data}})
			} else {
				// A remote URL with no inline bytes available: Gemini has
				// no "fetch this URL" part type, so this is the best we
				// can forward without an extra network round trip here.
				parts = append(parts, wirePart{Text: part.ImageURL})
			}
		}
	}
	return wireContent{Role: role, Parts: parts}
}

func toWireToolConfig(tc types.ToolChoice) *wireToolConfig {
	switch tc.Kind {
	case types.ToolChoiceAuto:
		return &wireToolConfig{FunctionCallingConfig: wireFunctionCallingConfig{Mode: "AUTO"}}
	case types.ToolChoiceNone:
		return &wireToolConfig{FunctionCallingConfig: wireFunctionCallingConfig{Mode: "NONE"}}
	case types.ToolChoiceRequired:
		return &wireToolConfig{FunctionCallingConfig: wireFunctionCallingConfig{Mode: "ANY"}}
	case types.ToolChoiceFunction:
		return &wireToolConfig{FunctionCallingConfig: wireFunctionCallingConfig{
			Mode: "ANY", AllowedFunctionNames: []string{tc.FunctionName},
		}}
	default:
		return nil
	}
}

// ParseResponse decodes a non-streaming generateContent response. Tool
// call ids are synthesized with a uuid — Gemini never assigns one on
// the wire — using the same scheme the streaming decoder uses, so a
// caller correlating ids across a non-streaming and a streamed call
// sees a consistent id format either way.
func (*Provider) ParseResponse(body []byte) (types.CompletionResult, error) {
	var resp wireResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.CompletionResult{}, fmt.Errorf("gemini: decoding response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return types.CompletionResult{}, fmt.Errorf("gemini: response had no candidates")
	}
	candidate := resp.Candidates[0]

	var text string
	var calls []types.ToolCall
	for _, part := range candidate.Content.Parts {
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return types.CompletionResult{}, fmt.Errorf("gemini: marshaling function call args: %w", err)
			}
			calls = append(calls, types.ToolCall{
				ID:        "call_" + uuid.NewString(),
				Type:      "function",
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
			continue
		}
		text += part.Text
	}

	var usage types.Usage
	if resp.UsageMetadata != nil {
		usage = types.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}

	finish := toFinishReason(candidate.FinishReason)
	if len(calls) > 0 {
		finish = types.FinishToolCalls
	}

	return types.CompletionResult{
		Content:      text,
		Model:        resp.ModelVersion,
		Usage:        usage,
		FinishReason: finish,
		ToolCalls:    calls,
	}, nil
}

func toFinishReason(s string) types.FinishReason {
	switch s {
	case "STOP":
		return types.FinishStop
	case "MAX_TOKENS":
		return types.FinishLength
	case "SAFETY":
		return types.FinishContentFilter
	case "":
		return types.FinishUnknown
	default:
		return types.FinishUnknown
	}
}
