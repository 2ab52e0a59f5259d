package executor

import (
	"io"
	"net/http"
	"strconv"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"
)

// classifyResponse builds an *Error from a non-2xx HTTP response,
// reading and closing its body.
func classifyResponse(resp *http.Response) *Error {
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &Error{Kind: ErrUnauthorized, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &Error{
			Kind: ErrRateLimited, StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		return &Error{Kind: ErrServer, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	default:
		return &Error{Kind: ErrAPI, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
}

// errorMessage extracts a human-readable message from an error
// response body. Every provider in this client nests it somewhere
// under an "error" key — either error.message (OpenAI, Cerebras,
// Anthropic) or a bare error string — so a couple of gjson paths cover
// all four without needing per-provider error structs. A body that
// doesn't parse as JSON at all is run through a best-effort repair
// pass first (providers occasionally truncate an error body at a
// proxy boundary), falling back to the raw bytes if even that fails.
func errorMessage(body []byte) string {
	if msg, ok := extractMessage(body); ok {
		return msg
	}
	repaired, err := jsonrepair.JSONRepair(string(body))
	if err == nil {
		if msg, ok := extractMessage([]byte(repaired)); ok {
			return msg
		}
	}
	return string(body)
}

func extractMessage(body []byte) (string, bool) {
	if !gjson.ValidBytes(body) {
		return "", false
	}
	result := gjson.GetBytes(body, "error")
	if !result.Exists() {
		return "", false
	}
	if msg := result.Get("message"); msg.Exists() && msg.String() != "" {
		return msg.String(), true
	}
	if result.Type == gjson.String && result.String() != "" {
		return result.String(), true
	}
	return "", false
}

// parseRetryAfter reads the Retry-After header's integer-seconds form
// only. A well-formed HTTP-date value (the header's other legal form)
// is deliberately not parsed: falling back to the current exponential
// backoff value is simpler and, per the API providers this client
// targets, the integer-seconds form is what's actually sent.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
