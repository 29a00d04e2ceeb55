package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient("test", baseURL, "secret", 2*time.Second, maxRetries, time.Millisecond, 0, nil, zap.NewNop())
}

func TestGetJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	var out struct {
		Value int `json:"value"`
	}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestGetJSONRetriesServerErrorsUntilExhausted(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, KindServerError, KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGetJSONRecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGetJSONDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, KindClientError, KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestGetJSONClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
}

func TestGetJSONClassifiesMalformedBodyAsMissingData(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Write([]byte(`{"truncated":`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, KindMissingData, KindOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "malformed data is not transient")
}

func TestGetJSONClassifiesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient("test", srv.URL, "", 50*time.Millisecond, 1, time.Millisecond, 0, nil, zap.NewNop())

	var out map[string]interface{}
	err := c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
	assert.Equal(t, KindTimeout, KindOf(err))
}

func TestGetJSONStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out map[string]interface{}
	err := c.GetJSON(ctx, "Test", "/v1/thing", nil, &out)
	require.Error(t, err)
}

// waitForAttempts blocks until the server has seen want requests, then
// yields long enough for the client goroutine to park on its next mock
// timer before the test advances the clock.
func waitForAttempts(t *testing.T, attempts *int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(attempts) < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for attempt %d, saw %d", want, atomic.LoadInt32(attempts))
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
}

func requireStillWaiting(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		t.Fatalf("call returned before its wait elapsed: %v", err)
	default:
	}
}

func TestGetJSONEnforcesMinSpacing(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	mk := clock.NewMock()
	c := NewClient("test", srv.URL, "", 2*time.Second, 1, time.Millisecond, 30*time.Second, mk, zap.NewNop())

	var out map[string]interface{}
	require.NoError(t, c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))

	done := make(chan error, 1)
	go func() {
		var out map[string]interface{}
		done <- c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	}()

	// The second call must hold until a full spacing interval has passed
	time.Sleep(20 * time.Millisecond)
	requireStillWaiting(t, done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	mk.Add(29 * time.Second)
	time.Sleep(20 * time.Millisecond)
	requireStillWaiting(t, done)

	mk.Add(time.Second)
	require.NoError(t, <-done)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetJSONBackoffGrowsGeometrically(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mk := clock.NewMock()
	c := NewClient("test", srv.URL, "", 2*time.Second, 3, time.Second, 0, mk, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		var out map[string]interface{}
		done <- c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out)
	}()

	// First retry waits base*2
	waitForAttempts(t, &attempts, 1)
	mk.Add(time.Second)
	time.Sleep(20 * time.Millisecond)
	requireStillWaiting(t, done)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	mk.Add(time.Second)

	// Second retry waits base*4
	waitForAttempts(t, &attempts, 2)
	mk.Add(3 * time.Second)
	time.Sleep(20 * time.Millisecond)
	requireStillWaiting(t, done)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	mk.Add(time.Second)

	err := <-done
	require.Error(t, err)
	assert.Equal(t, KindServerError, KindOf(err))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestGetJSONCancelAbortsBackoffWait(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mk := clock.NewMock()
	c := NewClient("test", srv.URL, "", 2*time.Second, 3, time.Minute, 0, mk, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var out map[string]interface{}
		done <- c.GetJSON(ctx, "Test", "/v1/thing", nil, &out)
	}()

	waitForAttempts(t, &attempts, 1)
	cancel()

	// The clock never advances, so only cancellation can unblock the wait
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("backoff wait did not abort on cancellation")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestGetJSONCancelAbortsSpacingWait(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	mk := clock.NewMock()
	c := NewClient("test", srv.URL, "", 2*time.Second, 1, time.Millisecond, 30*time.Second, mk, zap.NewNop())

	var out map[string]interface{}
	require.NoError(t, c.GetJSON(context.Background(), "Test", "/v1/thing", nil, &out))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		var out map[string]interface{}
		done <- c.GetJSON(ctx, "Test", "/v1/thing", nil, &out)
	}()

	time.Sleep(20 * time.Millisecond)
	requireStillWaiting(t, done)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("spacing wait did not abort on cancellation")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryableTaxonomy(t *testing.T) {
	assert.True(t, Retryable(NewError(KindTimeout, "p", "op", 0, nil)))
	assert.True(t, Retryable(NewError(KindRateLimited, "p", "op", 429, nil)))
	assert.True(t, Retryable(NewError(KindServerError, "p", "op", 502, nil)))
	assert.False(t, Retryable(NewError(KindClientError, "p", "op", 404, nil)))
	assert.False(t, Retryable(NewError(KindMissingData, "p", "op", 0, nil)))
	assert.False(t, Retryable(nil))
}
