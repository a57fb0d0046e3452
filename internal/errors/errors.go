// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNoCache indicates no cached payload exists for the requested slug.
	ErrNoCache = errors.New("no cached payload")

	// ErrQuotaExceeded indicates the spreadsheet API rejected the request
	// with status 429 and no cached payload was available to fall back to.
	ErrQuotaExceeded = errors.New("spreadsheet quota exceeded")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrContextCanceled indicates context was canceled.
	ErrContextCanceled = errors.New("context canceled")
)

// ConfigError represents missing or unusable configuration, typically
// credentials. It is fatal for the operation that raised it and is never
// retried.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new config error.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents a non-2xx response from the spreadsheet API.
// Status 429 is the only status with dedicated handling downstream: the
// orchestrator serves stale cache instead of failing the request.
type UpstreamError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream error (url=%s, status=%d): %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream error (url=%s, status=%d)", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(url string, status int, err error) *UpstreamError {
	return &UpstreamError{
		URL:    url,
		Status: status,
		Err:    err,
	}
}

// IsQuotaExceeded reports whether err is an UpstreamError with status 429.
func IsQuotaExceeded(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Status == 429
}

// StorageError represents cache read/write failures. Read failures degrade
// to "no cache" behavior; write failures after a successful ingestion are
// logged and the fresh payload is still served.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a new storage error.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{
		Op:  op,
		Err: err,
	}
}
