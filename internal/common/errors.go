// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages.
var (
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated indicates no valid session is available.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrRateLimit indicates the API rate limit has been exceeded.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// ValidationError reports bad or missing input. It carries every violated
// field, not just the first, so the user can correct them in one pass.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// NewValidationError creates a ValidationError from field messages.
func NewValidationError(fields ...string) error {
	return &ValidationError{Fields: fields}
}

// PermissionError reports a role or ownership mismatch. Not recoverable
// by retry.
type PermissionError struct {
	Msg string
}

func (e *PermissionError) Error() string {
	return e.Msg
}

// StateError reports an operation attempted on a proposal outside the
// Pending state. Not recoverable; decisions are terminal.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string {
	return e.Msg
}

// InvalidAmountError reports an approval amount outside the permitted
// range and names the computed maximum.
type InvalidAmountError struct {
	Max float64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("amount must be greater than 0 and must not exceed %.2f", e.Max)
}

// ConflictError reports a mutation blocked by referencing records, such
// as deleting a category that still has proposals against it.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// NetworkError wraps a transport-level failure. Transient; recoverable
// by retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return "network error: " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) {
		return true
	}
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
