// Package errors defines the typed errors returned by the report intake
// service.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents different categories of report processing errors
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeInvalidPath
	ErrorTypeAccessDenied
	ErrorTypeNotFound
	ErrorTypeNotPDF
	ErrorTypeEmptyFile
	ErrorTypeFileTooLarge
	ErrorTypeInvalidPDF
	ErrorTypeTextExtraction
	ErrorTypeUnrecognizedLayout
	ErrorTypeExport
	ErrorTypeCancelled
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeInvalidPath:
		return "INVALID_PATH"
	case ErrorTypeAccessDenied:
		return "ACCESS_DENIED"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeNotPDF:
		return "NOT_PDF"
	case ErrorTypeEmptyFile:
		return "EMPTY_FILE"
	case ErrorTypeFileTooLarge:
		return "FILE_TOO_LARGE"
	case ErrorTypeInvalidPDF:
		return "INVALID_PDF"
	case ErrorTypeTextExtraction:
		return "TEXT_EXTRACTION"
	case ErrorTypeUnrecognizedLayout:
		return "UNRECOGNIZED_LAYOUT"
	case ErrorTypeExport:
		return "EXPORT"
	case ErrorTypeCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// IsRecoverable reports whether retrying the same request can succeed.
// Problems with the document itself never go away on retry.
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeExport, ErrorTypeCancelled:
		return true
	default:
		return false
	}
}

// PipelineError is a failure to turn a report file into records and a graph
type PipelineError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Context     string    `json:"context,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	PageNumber  int       `json:"page_number,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	cause       error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.FilePath != "" {
		msg += " (" + e.FilePath + ")"
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *PipelineError) Unwrap() error {
	return e.cause
}

// New creates a PipelineError of the given type
func New(errorType ErrorType, message string) *PipelineError {
	return &PipelineError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// Wrap wraps err as a PipelineError. The message is err's text.
func Wrap(errorType ErrorType, err error) *PipelineError {
	e := New(errorType, err.Error())
	e.cause = err
	return e
}

// Wrapf wraps err with a message of its own.
func Wrapf(errorType ErrorType, err error, format string, args ...any) *PipelineError {
	e := New(errorType, fmt.Sprintf(format, args...))
	e.cause = err
	if err != nil {
		e.Context = err.Error()
	}
	return e
}

// WithContext adds context to an existing PipelineError
func (e *PipelineError) WithContext(context string) *PipelineError {
	e.Context = context
	return e
}

// WithFile adds file path information to an existing PipelineError
func (e *PipelineError) WithFile(filePath string) *PipelineError {
	e.FilePath = filePath
	return e
}

// WithPage adds page number information to an existing PipelineError
func (e *PipelineError) WithPage(pageNumber int) *PipelineError {
	e.PageNumber = pageNumber
	return e
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err is a PipelineError of the given type.
func Is(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}
