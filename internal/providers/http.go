package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// requester is the HTTP plumbing shared by every provider client: a
// per-request timeout, an optional rate limiter and a short retry with
// exponential backoff for transport errors and 5xx responses.
type requester struct {
	name       string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *logrus.Logger
	attempts   int
	backoff    time.Duration
}

func newRequester(name string, timeout time.Duration, limiter *rate.Limiter, logger *logrus.Logger) requester {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return requester{
		name: name,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:  limiter,
		logger:   logger,
		attempts: 2,
		backoff:  500 * time.Millisecond,
	}
}

// SetRetryPolicy overrides the retry count and base backoff.
func (r *requester) SetRetryPolicy(attempts int, backoff time.Duration) {
	if attempts < 1 {
		attempts = 1
	}
	r.attempts = attempts
	r.backoff = backoff
}

// getJSON decodes a GET response into target and returns the response
// headers so callers can read quota signals.
func (r *requester) getJSON(ctx context.Context, url string, headers map[string]string, target interface{}) (http.Header, error) {
	var lastErr error

	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			wait := r.backoff * time.Duration(1<<(attempt-1))
			r.logger.WithFields(logrus.Fields{
				"provider": r.name,
				"attempt":  attempt + 1,
				"wait":     wait.String(),
			}).Warnf("Retrying request: %v", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		hdr, retry, err := r.do(ctx, url, headers, target)
		if err == nil {
			return hdr, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, lastErr
}

func (r *requester) do(ctx context.Context, url string, headers map[string]string, target interface{}) (http.Header, bool, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, false, fmt.Errorf("%s: %w: %w", r.name, ErrRateLimited, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: failed to build request: %w", r.name, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		// a cancelled caller is not worth retrying
		return nil, !errors.Is(ctx.Err(), context.Canceled), fmt.Errorf("%s: request failed: %w", r.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode >= 500, &StatusError{Provider: r.name, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return nil, false, fmt.Errorf("%s: malformed payload: %w", r.name, err)
	}

	return resp.Header, false, nil
}
