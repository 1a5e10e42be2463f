// Package httpx fetches legacy export documents over HTTP with
// retry/backoff. The legacy CMS occasionally serves 5xx while its
// export is being regenerated, so transient failures are expected.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// HTTPError carries status/body for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: GET %s status=%d body=%s", e.URL, e.StatusCode, snippet(e.Body, 400))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// RetryConfig controls retry behavior.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
	}
}

// Get fetches url and returns the response body. Retries 408/425/429
// and any 5xx, honoring Retry-After when present. The body is always
// drained so the transport can reuse connections.
func Get(ctx context.Context, client *http.Client, url string, cfg RetryConfig) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultRetryConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			if !isRetryableNetErr(err) || attempt == cfg.MaxAttempts {
				return nil, err
			}
			lastErr = err
			if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := readAndClose(resp.Body)
		if readErr != nil {
			if !isRetryableNetErr(readErr) || attempt == cfg.MaxAttempts {
				return nil, readErr
			}
			lastErr = readErr
			if err := sleepBackoff(ctx, attempt, cfg, 0); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return body, nil
		}

		herr := &HTTPError{URL: url, StatusCode: resp.StatusCode, Body: body}
		if !isRetryableStatus(resp.StatusCode) || attempt == cfg.MaxAttempts {
			return nil, herr
		}
		lastErr = herr
		if err := sleepBackoff(ctx, attempt, cfg, parseRetryAfter(resp)); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("httpx: request failed")
}

func readAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableNetErr(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "eof")
}

func sleepBackoff(ctx context.Context, attempt int, cfg RetryConfig, retryAfter time.Duration) error {
	sleep := retryAfter
	if sleep <= 0 {
		sleep = cfg.BaseDelay * time.Duration(1<<(attempt-1))
		if sleep > cfg.MaxDelay {
			sleep = cfg.MaxDelay
		}
		// jitter 0..250ms
		sleep += time.Duration(rand.Intn(250)) * time.Millisecond
	}

	t := time.NewTimer(sleep)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseRetryAfter handles both the seconds and the HTTP-date form.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
