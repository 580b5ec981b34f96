// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pdiddy/docprep/pkg/types"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// HTTP 429 responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

// NewClient returns a resty client with the timeout and User-Agent from cfg.
// Retrying is left to DoWithRetry so it only ever applies to HTTP 429.
func NewClient(cfg types.HTTPConfig) *resty.Client {
	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(0)
	if cfg.UserAgent != "" {
		c.SetHeader("User-Agent", cfg.UserAgent)
	}
	return c
}

// DoWithRetry calls send and retries on HTTP 429 (Too Many Requests) with
// exponential backoff. The delay starts at RetryBaseDelay and doubles each
// attempt.
//
// send is called once per attempt so it can rebuild request bodies that
// were consumed. When maxRetries is 0 the request is sent exactly once. If
// the context is cancelled during a backoff wait the function returns
// ctx.Err(). After exhausting retries the last 429 response is returned so
// the caller can inspect it.
func DoWithRetry(ctx context.Context, maxRetries int, send func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	if maxRetries < 0 {
		maxRetries = 0
	}

	for attempt := 0; ; attempt++ {
		resp, err := send(ctx)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() != http.StatusTooManyRequests {
			return resp, nil
		}

		// Retries exhausted; hand back the 429 response.
		if attempt >= maxRetries {
			return resp, nil
		}

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}
