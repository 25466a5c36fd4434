// Package errors defines the structured error type used by everything
// around the compilation core: discovery, generation, configuration, and
// the CLI. The core pipeline itself never errors; it reports problems as
// diagnostics instead.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeDiscovery  ErrorType = "discovery"
	ErrorTypeGenerate   ErrorType = "generate"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeInvalidPath       = "ERR_INVALID_PATH"
	ErrCodeTemplateNotFound  = "ERR_TEMPLATE_NOT_FOUND"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
	ErrCodeWriteFailed       = "ERR_WRITE_FAILED"
	ErrCodeDiscoveryFailed   = "ERR_DISCOVERY_FAILED"
	ErrCodeGenerationFailed  = "ERR_GENERATION_FAILED"
	ErrCodeInternalError     = "ERR_INTERNAL"
)

// SigilError is a structured error with context.
type SigilError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Template    string
	FilePath    string
	Line        int
	Column      int
	Recoverable bool
}

// Error implements the error interface.
func (e *SigilError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Template != "" {
		parts = append(parts, "template:"+e.Template)
	}

	if e.FilePath != "" {
		location := e.FilePath
		if e.Line > 0 {
			location += fmt.Sprintf(":%d", e.Line)
			if e.Column > 0 {
				location += fmt.Sprintf(":%d", e.Column)
			}
		}
		parts = append(parts, location)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *SigilError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SigilError) Is(target error) bool {
	var t *SigilError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithLocation adds file location information.
func (e *SigilError) WithLocation(filePath string, line, column int) *SigilError {
	e.FilePath = filePath
	e.Line = line
	e.Column = column

	return e
}

// WithTemplate adds template context.
func (e *SigilError) WithTemplate(name string) *SigilError {
	e.Template = name

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *SigilError {
	return &SigilError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SigilError {
	return &SigilError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SigilError {
	return &SigilError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewDiscoveryError creates a discovery error.
func NewDiscoveryError(code, message string, cause error) *SigilError {
	return &SigilError{
		Type:        ErrorTypeDiscovery,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewGenerateError creates a code generation error.
func NewGenerateError(code, message string, cause error) *SigilError {
	return &SigilError{
		Type:        ErrorTypeGenerate,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *SigilError {
	return &SigilError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var se *SigilError
	if errors.As(err, &se) {
		return se.Recoverable
	}

	return false
}

// ErrTemplateNotFound creates a template lookup error.
func ErrTemplateNotFound(name string) *SigilError {
	return NewValidationError(ErrCodeTemplateNotFound, "template not found: "+name)
}

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *SigilError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}
