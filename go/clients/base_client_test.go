package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLimiter struct {
	mu       sync.Mutex
	acquired []string
	released []string
}

func (l *countingLimiter) Acquire(ctx context.Context, resource string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired = append(l.acquired, resource)
	return true
}

func (l *countingLimiter) Release(resource string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, resource)
}

func fastRetry() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestGetRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	client := NewBaseClient(server.URL)
	client.SetRetry(fastRetry())
	client.SetLimiter(limiter)

	body, err := client.Get(context.Background(), "/ladder")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Len(t, limiter.acquired, 3, "every attempt waits for a token")
	assert.Equal(t, "127.0.0.1", limiter.acquired[0])
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewBaseClient(server.URL)
	client.SetRetry(fastRetry())

	_, err := client.Get(context.Background(), "/missing")
	require.Error(t, err)
	assert.True(t, NetworkError.Has(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestGetGivesUpAfterAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewBaseClient(server.URL)
	client.SetRetry(fastRetry())

	_, err := client.Get(context.Background(), "/")
	require.Error(t, err)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetHonoursCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should never be sent")
	}))
	defer server.Close()

	limiter := &countingLimiter{}
	client := NewBaseClient(server.URL)
	client.SetLimiter(limiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Get(ctx, "/")
	require.Error(t, err)
	assert.Len(t, limiter.released, 1, "unused token is handed back")
}

func TestGetJSONReportsParseErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := NewBaseClient(server.URL)
	var out map[string]any
	err := client.GetJSON(context.Background(), "/", &out)
	require.Error(t, err)
	assert.True(t, ParseError.Has(err))
}
