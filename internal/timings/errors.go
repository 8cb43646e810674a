package timings

import (
	"context"
	"errors"
)

// Failure kinds a Fetcher reports. Implementations wrap one of these so the
// manager can classify the failure; none of them escape the manager.
var (
	ErrInvalidRequest       = errors.New("invalid timings request")
	ErrBadResponse          = errors.New("timings source returned a non-success response")
	ErrMalformedResponse    = errors.New("timings response could not be decoded")
	ErrMissingRequiredTimes = errors.New("timings response is missing required prayers")
)

// ErrSuperseded is returned by Select when another location was selected
// while the request was in flight. The result is discarded.
var ErrSuperseded = errors.New("timings selection superseded")

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrMissingRequiredTimes):
		return "incomplete_data"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}
