// Package metrics registers the Prometheus collectors the gateway
// exposes on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RequestsTotal counts completions by provider, model, and outcome
// ("ok", an llm.ErrorKind string, or "error" for a failure that is not
// an *llm.Error).
var RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "llmgateway_requests_total",
	Help: "Completion requests handled, by provider, model, and outcome.",
}, []string{"provider", "model", "outcome"})

// RequestDuration measures wall-clock time from the decoded request to
// the end of the SSE write (streaming) or to the return of the upstream
// completion call (non-streaming), labeled separately for each.
var RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "llmgateway_request_duration_seconds",
	Help:    "Request handling latency in seconds.",
	Buckets: prometheus.DefBuckets,
}, []string{"provider", "stream"})

// TokensTotal counts input and output tokens billed across all requests.
var TokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "llmgateway_tokens_total",
	Help: "Tokens accounted for, by provider and direction.",
}, []string{"provider", "direction"})
