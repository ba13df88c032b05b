// Package upstream implements the retrying HTTP client both language-model
// stages are built on.
package upstream

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"forge-api/internal/metrics"
	"forge-api/internal/shared"

	"go.uber.org/zap"
)

// RetryPolicy governs backoff behavior for one call. Immutable, supplied per
// call. {MaxAttempts: 1} recovers plain no-retry behavior.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: shared.DefaultMaxAttempts,
		BaseDelay:   shared.DefaultBaseDelay,
	}
}

// CallSpec is a fully formed request specification. The body is kept as bytes
// so every retry attempt can replay it.
type CallSpec struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

type Client struct {
	HTTP    *http.Client
	Log     *zap.SugaredLogger
	Timeout time.Duration
}

func NewClient(log *zap.SugaredLogger) *Client {
	tr := &http.Transport{
		Dial: (&net.Dialer{
			Timeout: 2 * time.Second,
		}).Dial,
		TLSHandshakeTimeout: 2 * time.Second,
		DisableKeepAlives:   false,
	}
	return &Client{
		HTTP:    &http.Client{Transport: tr, Timeout: shared.DefaultHTTPTimeout},
		Log:     log,
		Timeout: shared.DefaultRequestTimeout,
	}
}

// Do attempts the call up to policy.MaxAttempts times with exponential
// backoff and returns the response body of the first 2xx answer.
//
// Transport errors are retried until attempts run out, then surface as
// *TransportError. A 429 consumes an attempt, waits, and retries; if every
// attempt was eaten by 429s the call fails with *RetryExhaustedError. Any
// other non-2xx status is terminal and surfaces immediately as *StatusError.
func (c *Client) Do(ctx context.Context, target string, spec CallSpec, policy RetryPolicy) ([]byte, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	host := metricTarget(target)

	for i := 0; i < policy.MaxAttempts; i++ {
		metrics.UpstreamAttempts.WithLabelValues(host).Inc()

		body, err := c.attempt(ctx, target, spec)
		if err == nil {
			return body, nil
		}

		var kind string
		switch e := err.(type) {
		case *TransportError:
			if ctx.Err() != nil {
				return nil, err
			}
			if i == policy.MaxAttempts-1 {
				metrics.UpstreamErrors.WithLabelValues(host, "transport").Inc()
				return nil, err
			}
			kind = "transport"
		case *StatusError:
			if e.Status != http.StatusTooManyRequests {
				metrics.UpstreamErrors.WithLabelValues(host, "status").Inc()
				return nil, err
			}
			kind = "rate_limited"
		default:
			return nil, err
		}

		delay := policy.BaseDelay * time.Duration(1<<i)
		c.Log.Warnw("Retrying upstream call",
			"target", host,
			"attempt", i,
			"cause", kind,
			"delay", delay.String(),
		)
		metrics.UpstreamRetries.WithLabelValues(host, kind).Inc()
		if err := sleep(ctx, delay); err != nil {
			return nil, &TransportError{Err: err}
		}
	}

	metrics.UpstreamErrors.WithLabelValues(host, "retry_exhausted").Inc()
	return nil, &RetryExhaustedError{Attempts: policy.MaxAttempts}
}

// attempt performs a single HTTP exchange under the per-attempt timeout.
// A 429 comes back as *StatusError so the retry loop can tell it apart.
func (c *Client) attempt(ctx context.Context, target string, spec CallSpec) ([]byte, error) {
	actx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	method := spec.Method
	if method == "" {
		method = http.MethodPost
	}
	req, err := http.NewRequestWithContext(actx, method, target, bytes.NewReader(spec.Body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	for key, value := range spec.Headers {
		req.Header.Set(key, value)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func() {
		if closeErr := res.Body.Close(); closeErr != nil {
			c.Log.Warnw("Failed to close response body", "error", closeErr)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil, &StatusError{Status: res.StatusCode}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return body, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func metricTarget(target string) string {
	parsed, err := url.Parse(target)
	if err != nil || parsed.Host == "" {
		return target
	}
	return parsed.Host
}
