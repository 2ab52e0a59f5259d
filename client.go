// Package llm is a unified streaming completion client over four LLM
// wire protocols: Cerebras and other OpenAI-compatible chat-completions
// backends, OpenAI's Responses API, Anthropic's Messages API, and
// Google's Gemini API. One Client, one Request shape, one Stream type,
// regardless of which provider a given model string names.
package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jannisai/llmsdk/internal/aggregator"
	"github.com/jannisai/llmsdk/internal/executor"
	"github.com/jannisai/llmsdk/internal/provider"
	"github.com/jannisai/llmsdk/internal/types"
)

// defaultTimeout bounds a single HTTP round trip. It matches the
// reference client's default of 120 seconds — generous enough for a
// slow non-streaming completion without hanging forever on a stalled
// connection.
const defaultTimeout = 120 * time.Second

// Client sends completion requests to whichever provider a Request's
// model string names. Construct one with NewClient and at least one
// WithAPIKey option per provider you intend to use.
type Client struct {
	httpClient *http.Client
	executor   *executor.Executor
	retryCfg   executor.Config
	factory    provider.Factory

	apiKeys  map[string]string
	baseURLs map[string]string
}

// Option configures a Client constructed by NewClient.
type Option func(*Client)

// WithAPIKey registers the API key used to authenticate requests to
// providerName (one of "cerebras", "openai", "anthropic", "gemini").
func WithAPIKey(providerName, key string) Option {
	return func(c *Client) { c.apiKeys[providerName] = key }
}

// WithBaseURL overrides a provider's default API base URL, e.g. to
// point at a self-hosted gateway or a test double.
func WithBaseURL(providerName, baseURL string) Option {
	return func(c *Client) { c.baseURLs[providerName] = baseURL }
}

// WithHTTPClient replaces the default *http.Client, e.g. to install a
// custom transport or a shorter timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig replaces the default retry/backoff configuration.
func WithRetryConfig(cfg executor.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

// NewClient builds a Client. Connection pooling settings mirror the
// reference client's defaults (10 idle connections per host, a 90s
// idle timeout, TCP_NODELAY) since this client, like that one, expects
// to hold a handful of long-lived streaming connections open rather
// than cycling through many short ones.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retryCfg: executor.DefaultConfig(),
		factory:  provider.New,
		apiKeys:  make(map[string]string),
		baseURLs: make(map[string]string),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.executor = executor.New(c.httpClient, c.retryCfg)
	return c
}

// resolve splits req.Model into a provider and builds the matching
// adapter, base URL, and API key.
func (c *Client) resolve(req Request) (provider.Provider, string, string, error) {
	id, err := types.ParseModelID(req.Model)
	if err != nil {
		return nil, "", "", &Error{Kind: ErrInvalidModel, Message: err.Error()}
	}

	p, err := c.factory(id.Provider)
	if err != nil {
		return nil, "", "", &Error{Kind: ErrInvalidModel, Message: err.Error()}
	}

	key, ok := c.apiKeys[id.Provider]
	if !ok || key == "" {
		return nil, "", "", &Error{Kind: ErrMissingAPIKey, Message: fmt.Sprintf("no API key configured for provider %q", id.Provider)}
	}

	baseURL := p.BaseURL()
	if override, ok := c.baseURLs[id.Provider]; ok {
		baseURL = override
	}

	return p, baseURL, key, nil
}

func toRequestConfig(req Request, model string, stream bool) provider.RequestConfig {
	return provider.RequestConfig{
		Model:       model,
		Messages:    req.Messages,
		System:      req.System,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Tools:       req.Tools,
		ToolChoice:  req.ToolChoice,
		Stop:        req.Stop,
		Stream:      stream,
		Extra:       req.Extra,
	}
}

// Complete sends a non-streaming completion request and returns the
// full result.
func (c *Client) Complete(ctx context.Context, req Request) (types.CompletionResult, error) {
	p, baseURL, key, err := c.resolve(req)
	if err != nil {
		return types.CompletionResult{}, err
	}

	id, _ := types.ParseModelID(req.Model)
	cfg := toRequestConfig(req, id.Model, false)

	body, err := p.BuildCompleteBody(cfg)
	if err != nil {
		return types.CompletionResult{}, &Error{Kind: ErrConfig, Message: err.Error()}
	}

	url := p.CompleteURL(baseURL, id.Model)
	headers := p.Headers(key)

	resp, err := c.executor.Execute(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header = headers.Clone()
		return httpReq, nil
	})
	if err != nil {
		return types.CompletionResult{}, translateError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.CompletionResult{}, &Error{Kind: ErrTransport, Message: err.Error()}
	}

	result, err := p.ParseResponse(respBody)
	if err != nil {
		return types.CompletionResult{}, &Error{Kind: ErrParse, Message: err.Error()}
	}
	return result, nil
}

// Stream sends a streaming completion request and returns a Stream the
// caller pulls chunks from with Next, then finishes with Finalize.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	p, baseURL, key, err := c.resolve(req)
	if err != nil {
		return nil, err
	}

	id, _ := types.ParseModelID(req.Model)
	cfg := toRequestConfig(req, id.Model, true)

	body, err := p.BuildStreamBody(cfg)
	if err != nil {
		return nil, &Error{Kind: ErrConfig, Message: err.Error()}
	}

	url := p.StreamURL(baseURL, id.Model)
	headers := p.Headers(key)

	resp, err := c.executor.Execute(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header = headers.Clone()
		return httpReq, nil
	})
	if err != nil {
		return nil, translateError(err)
	}

	inner := aggregator.New(resp.Body, p.NewEventDecoder(), id.Model)
	return &Stream{inner: inner, body: resp.Body}, nil
}
