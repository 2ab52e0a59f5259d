// Package executor sends one HTTP request with exponential backoff
// retry, honoring a Retry-After override on 429s and classifying
// non-2xx responses into retryable vs terminal errors. Retries cover
// only the initial connect-and-get-headers phase — once a response
// has been accepted, a failure partway through reading its body is the
// caller's problem, not the executor's, matching how a streamed
// request can't sanely be replayed from the middle.
package executor

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config tunes the retry loop. Zero-value fields are replaced with the
// defaults below by New.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
}

// DefaultConfig matches the reference client's defaults: 3 retries,
// starting at 500ms, doubling up to a 30s ceiling.
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		Multiplier:     2.0,
	}
}

// jitterFactor produces a randomized backoff in [0.85, 1.15] of the
// nominal interval — cenkalti/backoff's RandomizationFactor scales
// the interval by 1±factor, so 0.15 reproduces that range exactly.
const jitterFactor = 0.15

// Executor runs requests built by a factory function against an
// *http.Client, retrying on transient failure.
type Executor struct {
	client *http.Client
	cfg    Config
}

// New returns an Executor. A zero Config is replaced with DefaultConfig.
func New(client *http.Client, cfg Config) *Executor {
	def := DefaultConfig()
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = def.InitialBackoff
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = def.MaxBackoff
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = def.Multiplier
	}
	return &Executor{client: client, cfg: cfg}
}

// Execute calls build to construct a fresh *http.Request for each
// attempt (an http.Request's body can only be read once, so a retry
// needs a new one) and returns the first successful (2xx) response, or
// the classified terminal error once retries are exhausted.
func (e *Executor) Execute(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.InitialBackoff
	bo.MaxInterval = e.cfg.MaxBackoff
	bo.Multiplier = e.cfg.Multiplier
	bo.RandomizationFactor = jitterFactor
	bo.MaxElapsedTime = 0 // attempts are bounded by MaxRetries, not elapsed wall time

	var lastErr error

	// attempt ranges over [0, MaxRetries) so this loop issues at most
	// MaxRetries total HTTP requests, not MaxRetries+1.
	for attempt := 0; attempt < e.cfg.MaxRetries; attempt++ {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("executor: building request: %w", err)
		}

		resp, err := e.client.Do(req)
		if err != nil {
			// A timed-out handshake or read is retryable; any other
			// network failure (DNS, connection refused, TLS) is not —
			// it will fail identically on every attempt.
			netErr, isNetErr := err.(net.Error)
			if isNetErr && netErr.Timeout() {
				lastErr = &Error{Kind: ErrTimeout, Message: err.Error()}
				if attempt == e.cfg.MaxRetries-1 {
					break
				}
				if sleepErr := sleepCtx(ctx, bo.NextBackOff()); sleepErr != nil {
					return nil, sleepErr
				}
				continue
			}
			return nil, &Error{Kind: ErrTransport, Message: err.Error()}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		classified := classifyResponse(resp)
		lastErr = classified
		if !classified.Retryable() || attempt == e.cfg.MaxRetries-1 {
			break
		}

		wait := bo.NextBackOff()
		if classified.Kind == ErrRateLimited {
			// An integer-seconds header, including "0", replaces the
			// backoff; an absent or unparseable one leaves it in place.
			if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
		if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
			return nil, sleepErr
		}
	}

	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
