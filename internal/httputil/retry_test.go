// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docprep/pkg/types"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

func getter(c *resty.Client, url string) func(context.Context) (*resty.Response, error) {
	return func(ctx context.Context) (*resty.Response, error) {
		return c.R().SetContext(ctx).Get(url)
	}
}

func TestDoWithRetry_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	resp, err := DoWithRetry(context.Background(), 5, getter(c, ts.URL))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_RetriesThen200(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	resp, err := DoWithRetry(context.Background(), 5, getter(c, ts.URL))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ExhaustsRetries(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	resp, err := DoWithRetry(context.Background(), 3, getter(c, ts.URL))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	// 1 initial + 3 retries = 4 total calls.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ZeroMeansSingleAttempt(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	resp, err := DoWithRetry(context.Background(), 0, getter(c, ts.URL))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDoWithRetry_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	// Use a longer base delay so the context cancels during the wait.
	old := RetryBaseDelay
	RetryBaseDelay = 500 * time.Millisecond
	defer func() { RetryBaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	_, err := DoWithRetry(ctx, 5, getter(c, ts.URL))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoWithRetry_Non429ErrorPassesThrough(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: time.Second})
	resp, err := DoWithRetry(context.Background(), 5, getter(c, ts.URL))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewClient_SetsUserAgentAndTimeout(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient(types.HTTPConfig{Timeout: 2 * time.Second, UserAgent: "docprep/test"})
	_, err := c.R().Get(ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "docprep/test", gotUA)
	assert.Equal(t, 2*time.Second, c.GetClient().Timeout)
}
