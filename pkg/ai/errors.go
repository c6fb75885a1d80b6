package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrUnavailable marks transport-level failures reaching the provider
var ErrUnavailable = errors.New("AI service unavailable")

// IsUnavailable reports whether err came from an unreachable provider
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// wrapError tags connection failures with ErrUnavailable
func wrapError(provider string, err error) error {
	if isConnectionError(err) {
		return &unavailableError{provider: provider, err: err}
	}
	return fmt.Errorf("%s request failed: %w", provider, err)
}

// unavailableError keeps the provider detail without repeating ErrUnavailable's text
type unavailableError struct {
	provider string
	err      error
}

func (e *unavailableError) Error() string {
	return ErrUnavailable.Error() + ": " + e.Detail()
}

// Detail is the provider-specific part of the message
func (e *unavailableError) Detail() string {
	return fmt.Sprintf("%s: %v", e.provider, e.err)
}

func (e *unavailableError) Is(target error) bool { return target == ErrUnavailable }

func (e *unavailableError) Unwrap() error { return e.err }

// UnavailableDetail returns the provider detail of an unavailable error, or err's message
func UnavailableDetail(err error) string {
	var ue *unavailableError
	if errors.As(err, &ue) {
		return ue.Detail()
	}
	return err.Error()
}

// isConnectionError checks if the error is a network/connection error.
// Expired or cancelled request contexts are not connection errors.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}

	// Check for dial and lookup failures
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	// Check for common connection error messages
	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"dial tcp",
		"i/o timeout",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}
