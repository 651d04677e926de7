package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrEmptyCompletion is wrapped in an UpstreamError when the model returns no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// NetworkError means the provider could not be reached.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("generation network failure: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UpstreamError means the provider answered with an error, or with nothing usable.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation upstream error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation upstream error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TimeoutError means the call did not complete in time.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsGenerationFailure reports whether err is one of the three typed generation failures.
func IsGenerationFailure(err error) bool {
	var n *NetworkError
	var u *UpstreamError
	var t *TimeoutError
	return errors.As(err, &n) || errors.As(err, &u) || errors.As(err, &t)
}

// classify maps an arbitrary provider error onto the typed failures.
func classify(err error) error {
	if err == nil || IsGenerationFailure(err) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &TimeoutError{Err: err}
		}
		return &NetworkError{Err: err}
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return statusError(gErr.Code, err)
	}

	// gRPC-backed Google clients surface *apierror.APIError, which exposes HTTPCode.
	var coded interface{ HTTPCode() int }
	if errors.As(err, &coded) && coded.HTTPCode() > 0 {
		return statusError(coded.HTTPCode(), err)
	}

	return &UpstreamError{Err: err}
}

func statusError(code int, err error) error {
	if code == http.StatusGatewayTimeout || code == http.StatusRequestTimeout {
		return &TimeoutError{Err: err}
	}
	return &UpstreamError{StatusCode: code, Err: err}
}
