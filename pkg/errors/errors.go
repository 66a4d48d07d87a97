// Package errors provides custom error types for the designlib catalog.
// These errors enable programmatic error checking (errors.Is / errors.As)
// across the ledger, file store and remote mirror layers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is is an alias for the standard library errors.Is.
var Is = errors.Is

// As is an alias for the standard library errors.As.
var As = errors.As

// Common sentinel errors for the catalog
var (
	// ErrInvalidName indicates a file name the codec cannot store
	ErrInvalidName = errors.New("invalid name")

	// ErrNotFound indicates that a requested file or record was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptLedger indicates the persisted ledger could not be parsed
	ErrCorruptLedger = errors.New("corrupt ledger")

	// ErrRemoteAuth indicates a missing or rejected remote credential
	ErrRemoteAuth = errors.New("remote authentication failed")

	// ErrRemoteConflict indicates a stale compare-and-swap token after retry
	ErrRemoteConflict = errors.New("remote conflict")

	// ErrRemoteUnavailable indicates a network failure or timeout talking to the remote
	ErrRemoteUnavailable = errors.New("remote unavailable")
)

// InvalidNameError represents a name rejected by the category codec
type InvalidNameError struct {
	Name   string
	Reason string
}

// Error implements the error interface
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid file name %q: %s", e.Name, e.Reason)
}

// Is implements errors.Is support
func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName || target == ErrInvalidInput
}

// NewInvalidNameError creates a new InvalidNameError
func NewInvalidNameError(name, reason string) *InvalidNameError {
	return &InvalidNameError{Name: name, Reason: reason}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
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

// CorruptLedgerError represents a ledger file that cannot be parsed.
// It is deliberately distinct from a missing ledger, which is the normal empty state.
type CorruptLedgerError struct {
	Path string
	Line int
	Err  error
}

// Error implements the error interface
func (e *CorruptLedgerError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("corrupt ledger %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("corrupt ledger %s: %v", e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *CorruptLedgerError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CorruptLedgerError) Is(target error) bool {
	return target == ErrCorruptLedger
}

// NewCorruptLedgerError creates a new CorruptLedgerError
func NewCorruptLedgerError(path string, line int, err error) *CorruptLedgerError {
	return &CorruptLedgerError{Path: path, Line: line, Err: err}
}

// AuthenticationError represents a missing or rejected remote credential
type AuthenticationError struct {
	Remote  string
	Method  string // "token", "bearer", ...
	Message string
	Err     error
}

// Error implements the error interface
func (e *AuthenticationError) Error() string {
	if e.Remote != "" {
		return fmt.Sprintf("authentication error for %s (%s): %s", e.Remote, e.Method, e.Message)
	}
	return fmt.Sprintf("authentication error (%s): %s", e.Method, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *AuthenticationError) Is(target error) bool {
	return target == ErrRemoteAuth
}

// NewAuthenticationError creates a new AuthenticationError
func NewAuthenticationError(remote, method, message string, err error) *AuthenticationError {
	return &AuthenticationError{
		Remote:  remote,
		Method:  method,
		Message: message,
		Err:     err,
	}
}

// ConflictError represents a compare-and-swap token the remote rejected as stale
type ConflictError struct {
	Path       string
	SHA        string
	StatusCode int
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	if e.SHA == "" {
		return fmt.Sprintf("remote conflict on %s (status %d): object already exists", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("remote conflict on %s (status %d): sha %s is stale", e.Path, e.StatusCode, e.SHA)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrRemoteConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(path, sha string, statusCode int) *ConflictError {
	return &ConflictError{Path: path, SHA: sha, StatusCode: statusCode}
}

// UnavailableError represents a network failure, timeout or server error from the remote
type UnavailableError struct {
	Remote    string
	Operation string
	Err       error
}

// Error implements the error interface
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remote %s unavailable during %s: %v", e.Remote, e.Operation, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UnavailableError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// NewUnavailableError creates a new UnavailableError
func NewUnavailableError(remote, operation string, err error) *UnavailableError {
	return &UnavailableError{Remote: remote, Operation: operation, Err: err}
}

// APIError represents an unexpected response from the remote API
type APIError struct {
	Remote     string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Remote, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Remote, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return target == ErrRemoteAuth
	case e.StatusCode == http.StatusConflict || e.StatusCode == http.StatusUnprocessableEntity:
		return target == ErrRemoteConflict
	case e.StatusCode >= 500:
		return target == ErrRemoteUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(remote string, statusCode int, message string) *APIError {
	return &APIError{
		Remote:     remote,
		StatusCode: statusCode,
		Message:    message,
	}
}

// RemoteSyncError is reported when a mirror push could not be completed.
// The local catalog change that triggered the push is never rolled back.
type RemoteSyncError struct {
	Path     string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *RemoteSyncError) Error() string {
	return fmt.Sprintf("remote sync of %s failed after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RemoteSyncError) Unwrap() error {
	return e.Err
}

// NewRemoteSyncError creates a new RemoteSyncError
func NewRemoteSyncError(path string, attempts int, err error) *RemoteSyncError {
	return &RemoteSyncError{Path: path, Attempts: attempts, Err: err}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "rename"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "upload", "delete", "recategorize", "restore"
	Resource  string // "file", "ledger", "mirror"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
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

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidName checks if an error is an invalid name error
func IsInvalidName(err error) bool {
	return errors.Is(err, ErrInvalidName)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsCorruptLedger checks if an error reports an unreadable ledger
func IsCorruptLedger(err error) bool {
	return errors.Is(err, ErrCorruptLedger)
}

// IsConflict checks if an error is a stale-token conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrRemoteConflict)
}

// IsRemote checks if an error belongs to the remote mirror tier
func IsRemote(err error) bool {
	return errors.Is(err, ErrRemoteAuth) ||
		errors.Is(err, ErrRemoteConflict) ||
		errors.Is(err, ErrRemoteUnavailable)
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
