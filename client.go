package stackmate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/KyberNetwork/logger"
	"github.com/goccy/go-json"
)

// Client is a resilient HTTP client for one remote service. It retries
// transient failures (transport errors, 429, 5xx) with jittered exponential
// backoff, honors Retry-After on rate limits, and optionally routes requests
// through a Scheduler so the remote service never sees more than the
// configured number of concurrent calls.
//
// Any other response status is terminal and returned as-is: a definitive
// answer from the server, success or not, is never worth retrying.
type Client struct {
	name      string
	http      Doer
	policy    RetryPolicy
	scheduler *Scheduler

	// rewrite, when set, maps request URLs before dispatch (e.g. a dev
	// proxy that avoids CORS). URL rewriting is orthogonal to resilience
	// and never affects retry classification.
	rewrite func(url string) string
}

// NewClient creates a resilient client for the named service.
func NewClient(name string, opts ...ClientOption) *Client {
	c := &Client{
		name:   name,
		policy: DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.policy = c.policy.normalized()
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.scheduler == nil && c.policy.UseScheduler {
		c.scheduler = NewScheduler(name, c.policy.MaxConcurrent, c.policy.MinGap)
	}
	return c
}

// Policy returns the client's effective retry policy.
func (c *Client) Policy() RetryPolicy { return c.policy }

// Get issues a resilient GET against url.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't build request for %s: %w", url, err)
	}
	return c.Do(ctx, req)
}

// GetJSON issues a resilient GET and decodes a 2xx JSON body into out. A
// non-2xx terminal response is returned as an error carrying the status.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	defer drainAndClose(resp)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d for %s", c.name, resp.StatusCode, url)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("couldn't decode %s response: %w", c.name, err)
	}
	return nil
}

// Do performs req with retry. On exhaustion over repeated 429/5xx it returns
// the last response so the caller can inspect the status; on exhaustion over
// transport failures it returns the last transport error joined with
// ErrRetriesExhausted.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.rewrite != nil {
		rewritten, err := http.NewRequestWithContext(ctx, req.Method, c.rewrite(req.URL.String()), req.Body)
		if err != nil {
			return nil, fmt.Errorf("couldn't rewrite request URL: %w", err)
		}
		rewritten.Header = req.Header
		req = rewritten
	}

	backoff := c.policy.InitialDelay

	for attempt := 0; ; attempt++ {
		resp, err := c.issue(ctx, req)

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if attempt >= c.policy.MaxRetries {
				requestsTotal.WithLabelValues(c.name, "exhausted").Inc()
				return nil, errors.Join(ErrRetriesExhausted, fmt.Errorf("request to %s failed after %d attempts: %w", req.URL, attempt+1, err))
			}
			wait := clampWait(backoff, c.policy.MaxDelay)
			c.logRetry(req, attempt, wait, 0, err)
			retriesTotal.WithLabelValues(c.name, "transport").Inc()
			if serr := sleepCtx(ctx, wait); serr != nil {
				return nil, serr
			}
			backoff = NextDelay(backoff, c.policy.BackoffFactor, c.policy.MaxDelay)
			continue
		}

		if !retryableStatus(resp.StatusCode) {
			requestsTotal.WithLabelValues(c.name, "ok").Inc()
			return resp, nil
		}

		if attempt >= c.policy.MaxRetries {
			// Last 429/5xx is still a definitive server answer; hand it
			// to the caller rather than hiding the status behind an error.
			requestsTotal.WithLabelValues(c.name, "exhausted").Inc()
			return resp, nil
		}

		wait := backoff
		if resp.StatusCode == http.StatusTooManyRequests && c.policy.RespectRetryAfter {
			if hinted, ok := ParseRetryAfter(resp.Header.Get("Retry-After")); ok && hinted > wait {
				wait = hinted
			}
		}
		wait = clampWait(wait, c.policy.MaxDelay)

		c.logRetry(req, attempt, wait, resp.StatusCode, nil)
		retriesTotal.WithLabelValues(c.name, fmt.Sprintf("status_%d", resp.StatusCode)).Inc()
		drainAndClose(resp)

		if serr := sleepCtx(ctx, wait); serr != nil {
			return nil, serr
		}
		backoff = NextDelay(backoff, c.policy.BackoffFactor, c.policy.MaxDelay)
	}
}

// issue performs a single attempt, routed through the scheduler when one is
// configured. The request is cloned so each attempt gets a fresh object.
func (c *Client) issue(ctx context.Context, req *http.Request) (*http.Response, error) {
	attemptReq := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("couldn't rewind request body: %w", err)
		}
		attemptReq.Body = body
	}

	requestInFlight.WithLabelValues(c.name).Inc()
	defer requestInFlight.WithLabelValues(c.name).Dec()

	if c.scheduler == nil {
		return c.http.Do(attemptReq)
	}

	var resp *http.Response
	err := c.scheduler.Schedule(ctx, func(ctx context.Context) error {
		var derr error
		resp, derr = c.http.Do(attemptReq)
		return derr
	})
	return resp, err
}

func (c *Client) logRetry(req *http.Request, attempt int, wait time.Duration, status int, err error) {
	fields := logger.Fields{
		"service": c.name,
		"url":     req.URL.String(),
		"attempt": attempt + 1,
		"wait":    wait.String(),
	}
	if status != 0 {
		fields["status"] = status
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Warn("Retrying chain API request")
}

// retryableStatus reports whether a response status may change on retry.
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func clampWait(wait, max time.Duration) time.Duration {
	if wait < MinBackoff {
		return MinBackoff
	}
	if wait > max {
		return max
	}
	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
