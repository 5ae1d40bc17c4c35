package errors

import (
	"errors"
	"fmt"
	"time"
)

// Error types for the finspect analysis pipeline
type ErrorType string

const (
	// Per-file analysis errors
	ErrorTypeRead     ErrorType = "read"
	ErrorTypeClassify ErrorType = "classify"
	ErrorTypeDecode   ErrorType = "decode"
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeHash     ErrorType = "hash"
	ErrorTypeTimeout  ErrorType = "timeout"
	ErrorTypeCanceled ErrorType = "canceled"
	ErrorTypeWrite    ErrorType = "write"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"

	// Internal errors
	ErrorTypeInternal ErrorType = "internal"
)

// Pipeline stage names as they appear in report error objects.
const (
	StageRead     = "read"
	StageClassify = "classify"
	StageHash     = "hash"
	StageText     = "text-analysis"
	StageJSON     = "json-analysis"
	StageCSV      = "csv-analysis"
	StageImage    = "image-analysis"
	StagePDF      = "pdf-analysis"
	StageWrite    = "write"
)

// AnalysisError represents a failure in one stage of the per-file pipeline.
// All per-file errors are recoverable by default: they are recorded in the
// report and the batch continues.
type AnalysisError struct {
	Type        ErrorType
	Stage       string
	Path        string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewReadError creates an error for an unreadable or oversized file
func NewReadError(path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeRead,
		Stage:       StageRead,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewClassifyError creates an error for a failed category assignment
func NewClassifyError(path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeClassify,
		Stage:       StageClassify,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewDecodeError creates an error for content that is not decodable as
// expected for its category (text encoding failure, broken image data)
func NewDecodeError(stage, path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeDecode,
		Stage:       stage,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewParseError creates an error for structurally invalid content
// (malformed JSON, ragged CSV)
func NewParseError(stage, path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeParse,
		Stage:       stage,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewHashError creates an error for a failed content digest
func NewHashError(path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeHash,
		Stage:       StageHash,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewTimeoutError creates an error for a file that exceeded its wall-clock budget
func NewTimeoutError(stage, path string, budget time.Duration) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeTimeout,
		Stage:       stage,
		Path:        path,
		Underlying:  fmt.Errorf("analysis exceeded %s budget", budget),
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewCanceledError marks a file whose analysis was cut short by shutdown
func NewCanceledError(stage, path string) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeCanceled,
		Stage:       stage,
		Path:        path,
		Underlying:  errors.New("analysis canceled"),
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewWriteError creates an error for a report that could not be persisted
func NewWriteError(path string, err error) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeWrite,
		Stage:       StageWrite,
		Path:        path,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// NewInternalError wraps a recovered panic value from an analyzer
func NewInternalError(stage, path string, recovered interface{}) *AnalysisError {
	return &AnalysisError{
		Type:        ErrorTypeInternal,
		Stage:       stage,
		Path:        path,
		Underlying:  fmt.Errorf("internal failure: %v", recovered),
		Timestamp:   time.Now(),
		Recoverable: true,
	}
}

// WithOperation adds operation detail to the error
func (e *AnalysisError) WithOperation(op string) *AnalysisError {
	e.Operation = op
	return e
}

// WithRecoverable marks the error as recoverable or fatal
func (e *AnalysisError) WithRecoverable(recoverable bool) *AnalysisError {
	e.Recoverable = recoverable
	return e
}

// Error implements the error interface
func (e *AnalysisError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed at stage %s for %s: %v", e.Type, e.Stage, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s failed at stage %s: %v", e.Type, e.Stage, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *AnalysisError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if the batch can continue past this error
func (e *AnalysisError) IsRecoverable() bool {
	return e.Recoverable
}

// Message returns the human-readable detail without repeating the file path,
// suitable for embedding in a report whose record already names the file.
func (e *AnalysisError) Message() string {
	detail := "unknown error"
	if e.Underlying != nil {
		detail = e.Underlying.Error()
	}
	if e.Operation != "" {
		return fmt.Sprintf("%s: %s", e.Operation, detail)
	}
	return detail
}

// StageOf extracts the pipeline stage from an error chain, or "" when the
// chain carries no AnalysisError.
func StageOf(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Stage
	}
	return ""
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}
