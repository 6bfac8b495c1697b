package errors

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Sentinel errors for common error conditions
var (
	// ErrDataSource is returned when the job-posting dataset cannot be read or is malformed
	ErrDataSource = errors.New("data source error")

	// ErrEmptyQuery is returned when the user supplied no usable skill or interest text
	ErrEmptyQuery = errors.New("empty query")

	// ErrJobNotFound is returned when a background job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorpusNotLoaded is returned when a request arrives before any corpus has been loaded
	ErrCorpusNotLoaded = errors.New("corpus not loaded")
)

// DataSourceError describes an unreadable or malformed dataset.
// Resource names the file or source identity, Column the missing column (if any).
type DataSourceError struct {
	Resource string
	Column   string
	Err      error
	Stack    []byte
}

func (e *DataSourceError) Error() string {
	switch {
	case e.Column != "" && e.Err != nil:
		return fmt.Sprintf("data source '%s': column '%s': %v", e.Resource, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("data source '%s' is missing required column '%s'", e.Resource, e.Column)
	case e.Err != nil:
		return fmt.Sprintf("data source '%s' is unreadable: %v", e.Resource, e.Err)
	default:
		return fmt.Sprintf("data source '%s' is unreadable", e.Resource)
	}
}

func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSource
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// StackTrace returns the stack captured when the error was created.
func (e *DataSourceError) StackTrace() []byte {
	return e.Stack
}

// NewDataSourceError creates a DataSourceError for an unreadable resource.
func NewDataSourceError(resource string, err error) *DataSourceError {
	return &DataSourceError{Resource: resource, Err: err, Stack: captureStack(err)}
}

// NewMissingColumnError creates a DataSourceError for a missing required column.
func NewMissingColumnError(resource, column string) *DataSourceError {
	return &DataSourceError{Resource: resource, Column: column, Stack: captureStack(nil)}
}

func captureStack(err error) []byte {
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			return stackErr.Stack()
		}
		return goerrors.Wrap(err, 2).Stack()
	}
	return goerrors.New("data source error").Stack()
}

// EmptyQueryError is returned when there is nothing to rank against.
type EmptyQueryError struct {
	Reason string
}

func (e *EmptyQueryError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("empty query: %s", e.Reason)
	}
	return "empty query: at least one skill or interest is required"
}

func (e *EmptyQueryError) Is(target error) bool {
	return target == ErrEmptyQuery
}

// NewEmptyQueryError creates a new EmptyQueryError
func NewEmptyQueryError(reason string) *EmptyQueryError {
	return &EmptyQueryError{Reason: reason}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
