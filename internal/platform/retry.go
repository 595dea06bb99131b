package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// ErrUnavailable is the soft "apiError" signal: a read call failed after
// retries (or failed non-retryably). Callers must degrade to a documented
// default instead of aborting.
var ErrUnavailable = errors.New("practice API unavailable")

// ErrAuth is fatal: no subsequent call can succeed.
var ErrAuth = errors.New("practice API authentication failed")

// errNotFound marks an empty upstream answer; endpoint wrappers convert it
// to a valid empty result.
var errNotFound = errors.New("not found")

const (
	maxAttempts = 3
	backoffStep = 500 * time.Millisecond
)

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

// getJSON performs an idempotent read with up to maxAttempts tries and
// linear backoff (attempt x backoffStep). Only network failures, 409, and
// 5xx are retried; auth failures pass through untouched and everything else
// collapses into ErrUnavailable.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := c.do(ctx, path, query, out)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, ErrAuth), errors.Is(err, errNotFound):
			return err
		case !retryable(err):
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		lastErr = err
		if attempt == maxAttempts {
			break
		}
		c.log.Warn().Str("path", path).Int("attempt", attempt).Err(err).Msg("retrying practice API call")
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(time.Duration(attempt) * backoffStep):
		}
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, maxAttempts, lastErr)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusConflict || se.code >= 500
	}
	// Anything without a status is a network-level failure.
	return true
}

func (c *Client) do(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		return &statusError{code: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
