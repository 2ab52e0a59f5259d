package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	llm "github.com/jannisai/llmsdk"
	"github.com/jannisai/llmsdk/internal/metrics"
	"github.com/jannisai/llmsdk/internal/stream"
	"github.com/jannisai/llmsdk/internal/types"
)

// wireRequest is the OpenAI-compatible chat completions request body
// this gateway accepts. Model must be namespaced "<provider>/<model>"
// (e.g. "anthropic/claude-3-5-sonnet-20241022") so the client library
// can resolve which adapter and API key to use.
type wireRequest struct {
	Model       string          `json:"model"`
	Messages    []wireMessage   `json:"messages"`
	Stream      bool            `json:"stream"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature *float64        `json:"temperature"`
	TopP        *float64        `json:"top_p"`
	Tools       []wireTool      `json:"tools"`
	ToolChoice  json.RawMessage `json:"tool_choice"`
}

type wireMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content"`
	Name       string          `json:"name,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall  `json:"tool_calls,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

func toLLMRequest(req wireRequest) llm.Request {
	messages := make([]types.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg := types.Message{
			Role:       types.Role(m.Role),
			Content:    types.Text(m.Content),
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
				ID: tc.ID, Type: tc.Type, Name: tc.Function.Name, Arguments: tc.Function.Arguments,
			})
		}
		messages = append(messages, msg)
	}

	tools := make([]types.Tool, 0, len(req.Tools))
	for _, t := range req.Tools {
		tools = append(tools, types.Tool{
			Name: t.Function.Name, Description: t.Function.Description, Parameters: t.Function.Parameters,
		})
	}

	return llm.Request{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Tools:       tools,
		ToolChoice:  toLLMToolChoice(req.ToolChoice),
	}
}

func toLLMToolChoice(raw json.RawMessage) *types.ToolChoice {
	if len(raw) == 0 {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		switch asString {
		case "auto":
			return &types.ToolChoice{Kind: types.ToolChoiceAuto}
		case "none":
			return &types.ToolChoice{Kind: types.ToolChoiceNone}
		case "required":
			return &types.ToolChoice{Kind: types.ToolChoiceRequired}
		}
		return nil
	}
	var asObject struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.Function.Name != "" {
		return &types.ToolChoice{Kind: types.ToolChoiceFunction, FunctionName: asObject.Function.Name}
	}
	return nil
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleHealth responds with a simple JSON liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleChatCompletions handles POST /v1/chat/completions. It decodes
// the request, dispatches to the unified client, and branches on
// streaming vs non-streaming.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var wire wireRequest
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	providerName, _, _ := strings.Cut(wire.Model, "/")
	req := toLLMRequest(wire)

	start := time.Now()
	streamLabel := strconv.FormatBool(wire.Stream)

	w.Header().Set("X-LLMGateway-Model", wire.Model)

	if wire.Stream {
		llmStream, err := s.client.Stream(r.Context(), req)
		if err != nil {
			recordOutcome(providerName, wire.Model, err)
			writeJSONError(w, http.StatusBadGateway, "provider error: "+err.Error())
			return
		}
		defer llmStream.Close()

		usage, err := stream.Write(r.Context(), w, requestID(r), wire.Model, llmStream)
		metrics.RequestDuration.WithLabelValues(providerName, streamLabel).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Printf("stream write error: %v", err)
			recordOutcome(providerName, wire.Model, err)
			return
		}
		recordUsage(providerName, usage)
		metrics.RequestsTotal.WithLabelValues(providerName, wire.Model, "ok").Inc()
		return
	}

	result, err := s.client.Complete(r.Context(), req)
	metrics.RequestDuration.WithLabelValues(providerName, streamLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		recordOutcome(providerName, wire.Model, err)
		writeJSONError(w, http.StatusBadGateway, "provider error: "+err.Error())
		return
	}

	recordUsage(providerName, result.Usage)
	metrics.RequestsTotal.WithLabelValues(providerName, wire.Model, "ok").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":            requestID(r),
		"object":        "chat.completion",
		"model":         result.Model,
		"choices":       []map[string]any{{"index": 0, "message": map[string]string{"role": "assistant", "content": result.Content}, "finish_reason": result.FinishReason}},
		"usage": map[string]int{
			"prompt_tokens":     result.Usage.InputTokens,
			"completion_tokens": result.Usage.OutputTokens,
			"total_tokens":      result.Usage.Total(),
		},
	})
}

func recordOutcome(providerName, model string, err error) {
	outcome := "error"
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		outcome = string(llmErr.Kind)
	}
	metrics.RequestsTotal.WithLabelValues(providerName, model, outcome).Inc()
}

func recordUsage(providerName string, usage types.Usage) {
	metrics.TokensTotal.WithLabelValues(providerName, "input").Add(float64(usage.InputTokens))
	metrics.TokensTotal.WithLabelValues(providerName, "output").Add(float64(usage.OutputTokens))
}

func requestID(r *http.Request) string {
	return fmt.Sprintf("req_%p", r)
}
