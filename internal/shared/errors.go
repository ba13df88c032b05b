package shared

import (
	"errors"
	"fmt"
)

// RequestError is used when we want a specific error message and StatusCode.
// sane defaults are listed below. For routes that need custom error messages,
// a request error can be generated and a handler expects the router to return
// the exact message inside the request error msg
//
// Error codes should be bubbled where the RequestError msg is expected to be
// returned to the user. If the user should see a generic error message but
// the error chain should include more detail for logging purposes, then a generic
// error should be added that provides context
type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status %d: err %v", r.StatusCode, r.Err)
}

var (
	ErrMissingAuth   = &RequestError{Err: errors.New("missing authorization header"), StatusCode: 401}
	ErrInvalidFormat = &RequestError{Err: errors.New("invalid authentication format"), StatusCode: 401}

	ErrMissingFields    = &RequestError{Err: errors.New("Missing required fields: prompt, language, or taskType"), StatusCode: 400}
	ErrInvalidRequest   = &RequestError{Err: errors.New("invalid request body"), StatusCode: 400}
	ErrMethodNotAllowed = &RequestError{Err: errors.New("Method not allowed"), StatusCode: 405}
	ErrRateLimited      = &RequestError{Err: errors.New("rate limit exceeded"), StatusCode: 429}

	ErrInternalServerError = &RequestError{Err: errors.New("internal server error"), StatusCode: 500}
)
