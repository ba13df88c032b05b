package upstream

import "fmt"

// TransportError wraps a network-level failure reaching the upstream. It is
// retried per policy and only surfaced once attempts are exhausted.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError carries a terminal non-2xx, non-429 upstream status. Never
// retried.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

// RetryExhaustedError is returned when every attempt was consumed by a
// retryable outcome (rate limiting) without ever reaching a terminal
// response.
type RetryExhaustedError struct {
	Attempts int
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("upstream rate limited, gave up after %d attempts", e.Attempts)
}

// ParseError means the upstream answered 2xx but the payload was missing the
// field the caller needed.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("upstream response missing %s", e.Field)
}
