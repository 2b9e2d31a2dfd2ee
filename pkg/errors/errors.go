// Package errors provides custom error types for the airbase system.
// These errors enable programmatic error checking and consistent error
// reporting across the client and the reconciliation engine.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the airbase system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrAPIKeyRequired indicates that an API key is required but not provided
	ErrAPIKeyRequired = errors.New("API key required")

	// ErrRateLimited indicates that the API rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrRetriesExhausted indicates that a request failed after all retries
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// APIError represents an error returned by the remote table service
type APIError struct {
	Table      string // Table name, when known
	StatusCode int
	Type       string // Remote-provided error type
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode == 404 {
		return target == ErrNotFound
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(table string, statusCode int, message string) *APIError {
	return &APIError{
		Table:      table,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// RecordError represents a per-record failure during a reconciliation pass.
// It carries enough context to report which record failed and why without
// aborting the pass for other records.
type RecordError struct {
	Operation string // "create", "update", "delete", "compare", "link"
	RecordID  string // Remote record ID, when known
	Key       string // Primary key display value, when known
	Message   string
	Err       error
}

// Error implements the error interface
func (e *RecordError) Error() string {
	switch {
	case e.RecordID != "":
		return fmt.Sprintf("failed to %s record %s: %s", e.Operation, e.RecordID, e.Message)
	case e.Key != "":
		return fmt.Sprintf("failed to %s record with key %q: %s", e.Operation, e.Key, e.Message)
	default:
		return fmt.Sprintf("failed to %s record: %s", e.Operation, e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError creates a new RecordError
func NewRecordError(operation, recordID string, err error) *RecordError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &RecordError{
		Operation: operation,
		RecordID:  recordID,
		Message:   message,
		Err:       err,
	}
}

// CombineError represents a failure while combining two records.
// Callers fall back to the unmodified candidate record when they see it;
// the explicit type exists so that the fallback path is assertable.
type CombineError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *CombineError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("combine failed on field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("combine failed: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *CombineError) Unwrap() error {
	return e.Err
}

// TimeoutError represents an operation timeout
type TimeoutError struct {
	Operation string
	Duration  string
	Message   string
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	if e.Duration != "" {
		return fmt.Sprintf("operation %s timed out after %s: %s", e.Operation, e.Duration, e.Message)
	}
	return fmt.Sprintf("operation %s timed out: %s", e.Operation, e.Message)
}

// Is implements errors.Is support
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsRetriesExhausted checks if an error indicates a definitive transport failure
func IsRetriesExhausted(err error) bool {
	return errors.Is(err, ErrRetriesExhausted)
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapAPI wraps an error as an APIError
func WrapAPI(table string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Table:      table,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// WrapRecord wraps an error as a RecordError
func WrapRecord(operation, recordID string, err error) error {
	if err == nil {
		return nil
	}
	return NewRecordError(operation, recordID, err)
}
