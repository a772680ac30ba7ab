// Package errors provides standardized error types and helpers for the sqlbridge codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidInput indicates invalid caller input or validation failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrExecution indicates the store rejected or failed a statement
	ErrExecution = errors.New("execution failed")
	// ErrInternal indicates an internal system error
	ErrInternal = errors.New("internal error")
)

// InvalidIdentifierError reports a table or column name that failed
// identifier validation. The offending name is included so callers can
// correct it; it is never interpolated into statement text.
type InvalidIdentifierError struct {
	Kind string // "table" or "column"
	Name string // The name that failed validation
}

func (e *InvalidIdentifierError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("invalid %s name: %q", e.Kind, e.Name)
	}
	return fmt.Sprintf("invalid identifier: %q", e.Name)
}

func (e *InvalidIdentifierError) Unwrap() error {
	return ErrInvalidInput
}

// EmptyColumnSetError reports an insert with no columns or an update with
// no set-columns.
type EmptyColumnSetError struct {
	Operation string // Operation that required columns (e.g., "insert", "update")
}

func (e *EmptyColumnSetError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("%s requires at least one column", e.Operation)
	}
	return "no columns provided"
}

func (e *EmptyColumnSetError) Unwrap() error {
	return ErrInvalidInput
}

// BindError reports a value that could not be encoded as a native bind
// parameter. It stems from caller-supplied data, so it unwraps to
// ErrInvalidInput.
type BindError struct {
	Position int    // Zero-based bind position
	Message  string // Error details
	Err      error  // Underlying error, if any
}

func (e *BindError) Error() string {
	return fmt.Sprintf("cannot bind parameter %d: %s", e.Position, e.Message)
}

func (e *BindError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// ExecutionError reports a statement the store rejected or failed
// (constraint violation, I/O error, busy/locked). The store's message is
// surfaced verbatim and never retried here.
type ExecutionError struct {
	Statement string // Statement text that failed
	Err       error  // Underlying driver error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("statement failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrExecution
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "JSON", "config")
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "notebook", "server")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// Helper functions for creating common errors

// NewInvalidIdentifier creates an InvalidIdentifierError
func NewInvalidIdentifier(kind, name string) *InvalidIdentifierError {
	return &InvalidIdentifierError{
		Kind: kind,
		Name: name,
	}
}

// NewEmptyColumnSet creates an EmptyColumnSetError
func NewEmptyColumnSet(operation string) *EmptyColumnSetError {
	return &EmptyColumnSetError{
		Operation: operation,
	}
}

// NewBind creates a BindError
func NewBind(position int, message string) *BindError {
	return &BindError{
		Position: position,
		Message:  message,
	}
}

// NewExecution creates an ExecutionError
func NewExecution(statement string, err error) *ExecutionError {
	return &ExecutionError{
		Statement: statement,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Message: message,
	}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
