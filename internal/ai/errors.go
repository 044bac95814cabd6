package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Transport failure categories for the upstream generation call. Provider
// implementations wrap these so callers can map them with errors.Is without
// knowing which backend produced them. Messages never carry credentials.
var (
	ErrTimeout      = errors.New("upstream timeout")
	ErrAuthRejected = errors.New("upstream rejected credentials")
	ErrRateLimited  = errors.New("upstream rate limited")
	ErrUnavailable  = errors.New("upstream unavailable")
)

// classifyStatus maps an upstream HTTP status to a sentinel error.
// Unmapped statuses return a generic error carrying only the code.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrAuthRejected, status)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w (status %d)", ErrRateLimited, status)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w (status %d)", ErrTimeout, status)
	case status >= 500:
		return fmt.Errorf("%w (status %d)", ErrUnavailable, status)
	default:
		return fmt.Errorf("upstream request failed (status %d)", status)
	}
}

// classifyTransport maps non-HTTP call failures (deadline, connection) to sentinels.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, context.DeadlineExceeded)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: network timeout", ErrTimeout)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// isTransient reports whether a failure is worth exactly one retry.
// Auth and rate-limit failures are never retried to avoid amplifying load.
func isTransient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrUnavailable)
}
