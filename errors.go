package kaskade

import (
	"errors"
	"fmt"
	"time"
)

// Error type constants used in ClientError.Type.
const (
	ErrorTypeValidation  = "Validation"
	ErrorTypeReentrant   = "Reentrant"
	ErrorTypeAuth        = "Auth"
	ErrorTypeNetwork     = "Network"
	ErrorTypeCache       = "Cache"
	ErrorTypeRateLimit   = "RateLimit"
	ErrorTypeCircuitOpen = "CircuitOpen"
)

// Sentinel errors for common failure scenarios
var (
	// ErrAlreadyExecuting is returned when Execute is called on a request
	// that already has an execution in flight.
	ErrAlreadyExecuting = errors.New("kaskade: request already executing")

	// ErrNilClient is returned when a request is constructed or executed
	// without an associated client configuration.
	ErrNilClient = errors.New("kaskade: nil client")

	// ErrInvalidMethod is returned when an HTTP method string is not one of
	// the supported verbs.
	ErrInvalidMethod = errors.New("kaskade: invalid HTTP method")

	// ErrRateLimited is returned when the cloud layer denies a request due
	// to rate limiting.
	ErrRateLimited = errors.New("kaskade: rate limited")

	// ErrCircuitOpen is returned when the cloud layer's circuit breaker is
	// in open state.
	ErrCircuitOpen = errors.New("kaskade: circuit open")
)

// ClientError is the structured error produced by the executor and the
// built-in layers. It carries enough context to diagnose which policy and
// layer a failure originated from.
type ClientError struct {
	Type      string
	Message   string
	Cause     error
	ExecID    string
	Method    string
	URL       string
	Policy    string
	Layer     string
	Timestamp time.Time
}

// Error implements error interface.
func (e *ClientError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.ExecID != "" {
		msg = fmt.Sprintf("[%s] %s", e.ExecID, msg)
	}
	if e.Policy != "" {
		msg = fmt.Sprintf("%s (policy %s)", msg, e.Policy)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ClientError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error types for errors.Is.
func (e *ClientError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*ClientError); ok {
		return e.Type == targetErr.Type
	}
	return false
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *ClientError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Error Type: %s\n", e.Type)
	info += fmt.Sprintf("Message: %s\n", e.Message)
	if e.ExecID != "" {
		info += fmt.Sprintf("Execution ID: %s\n", e.ExecID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if e.Policy != "" {
		info += fmt.Sprintf("Policy: %s\n", e.Policy)
	}
	if e.Layer != "" {
		info += fmt.Sprintf("Layer: %s\n", e.Layer)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}
