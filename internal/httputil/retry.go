// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the shared HTTP client handed to the provider
// SDKs.
package httputil

import (
	"io"
	"math"
	"net/http"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// rate-limited responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

const defaultMaxRetries = 4

// NewClient returns an HTTP client whose transport retries rate-limited
// (HTTP 429) and overloaded (HTTP 529, used by Anthropic) responses with
// exponential backoff. When maxRetries is 0 the default (4) is used.
func NewClient(timeout time.Duration, maxRetries int) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &retryTransport{
			next:       http.DefaultTransport,
			maxRetries: maxRetries,
		},
	}
}

type retryTransport struct {
	next       http.RoundTripper
	maxRetries int
}

// RoundTrip retries retryable status codes. The delay starts at
// RetryBaseDelay and doubles each attempt. Requests whose bodies cannot be
// replayed (no GetBody) are never retried. If the request context is
// cancelled during a backoff wait, its error is returned. After exhausting
// retries the last response is returned so the caller can inspect it.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	maxRetries := t.maxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		r := req
		if attempt > 0 {
			r = req.Clone(req.Context())
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				r.Body = body
			}
		}

		resp, err := t.next.RoundTrip(r)
		if err != nil {
			return nil, err
		}

		if !retryableStatus(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}
		if req.Body != nil && req.GetBody == nil {
			// Body already consumed and not replayable.
			return resp, nil
		}

		// Drain and close before retrying so the connection is reused.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == 529
}
