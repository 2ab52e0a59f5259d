package executor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildGET(url string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		return http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	}
}

func TestExecuteSucceedsOnFirstTry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(srv.Client(), Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, Multiplier: 2})
	resp, err := e.Execute(context.Background(), buildGET(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExecuteRetriesOn5xxThenSucceeds(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(srv.Client(), Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 10 * time.Millisecond, Multiplier: 2})
	resp, err := e.Execute(context.Background(), buildGET(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, calls)
}

func TestExecuteExhaustsRetriesOn5xx(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := New(srv.Client(), Config{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2})
	_, err := e.Execute(context.Background(), buildGET(srv.URL))
	require.Error(t, err)

	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, ErrServer, execErr.Kind)
	// Exactly MaxRetries total HTTP requests — never MaxRetries+1.
	assert.Equal(t, 2, calls)
}

func TestExecuteDoesNotRetryUnauthorized(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	e := New(srv.Client(), Config{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, Multiplier: 2})
	_, err := e.Execute(context.Background(), buildGET(srv.URL))
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var execErr *Error
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, ErrUnauthorized, execErr.Kind)
	assert.Equal(t, "bad key", execErr.Message)
}

func TestExecuteHonorsRetryAfterHeader(t *testing.T) {
	calls := 0
	var gotSecondCallAt time.Time
	firstCallAt := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		gotSecondCallAt = time.Now()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(srv.Client(), Config{MaxRetries: 3, InitialBackoff: time.Second, MaxBackoff: 10 * time.Second, Multiplier: 2})
	_, err := e.Execute(context.Background(), buildGET(srv.URL))
	require.NoError(t, err)
	assert.Less(t, gotSecondCallAt.Sub(firstCallAt), 500*time.Millisecond)
}

func TestParseRetryAfterIgnoresHTTPDate(t *testing.T) {
	assert.Equal(t, 0, parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT"))
	assert.Equal(t, 120, parseRetryAfter("120"))
	assert.Equal(t, 0, parseRetryAfter(""))
}
