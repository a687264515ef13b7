package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeParse    ErrorType = "parse"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeSecurity ErrorType = "security"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeUnterminated   = "PARSE_UNTERMINATED"
	ErrCodeParagraph      = "PARSE_PARAGRAPH"
	ErrCodeDuplicate      = "PARSE_DUPLICATE"
	ErrCodeInvalidOption  = "PARSE_OPTION"
	ErrCodeArity          = "PARSE_ARITY"
	ErrCodeMissing        = "PARSE_MISSING"
	ErrCodeInclude        = "PARSE_INCLUDE"
	ErrCodeBoolean        = "PARSE_BOOLEAN"
	ErrCodeDepth          = "PARSE_DEPTH"
	ErrCodeRead           = "IO_READ"
	ErrCodeWrite          = "IO_WRITE"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeCommandInvalid = "SECURITY_COMMAND"
	ErrCodeInternalError  = "INTERNAL"
)

// SemtexError is a structured error type with source location context.
type SemtexError struct {
	Type     ErrorType
	Code     string
	Message  string
	Cause    error
	FilePath string
	Line     int
	// Commands lists the enclosing commands, innermost first.
	Commands []string
	Context  map[string]interface{}
}

// Error implements the error interface.
func (e *SemtexError) Error() string {
	var b strings.Builder

	if e.FilePath != "" {
		b.WriteString(e.FilePath)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
		b.WriteString(": ")
	}

	b.WriteString(e.Message)

	for _, cmd := range e.Commands {
		b.WriteString(" in ")
		b.WriteString(cmd)
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *SemtexError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *SemtexError) Is(target error) bool {
	var t *SemtexError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *SemtexError) WithContext(key string, value interface{}) *SemtexError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithLocation adds file location information.
func (e *SemtexError) WithLocation(filePath string, line int) *SemtexError {
	e.FilePath = filePath
	e.Line = line

	return e
}

// WithinCommand records that the error surfaced while expanding command.
func (e *SemtexError) WithinCommand(command string) *SemtexError {
	e.Commands = append(e.Commands, command)

	return e
}

// NewParseError creates a structural parse error at a source location.
func NewParseError(code, filePath string, line int, message string) *SemtexError {
	return &SemtexError{
		Type:     ErrorTypeParse,
		Code:     code,
		Message:  message,
		FilePath: filePath,
		Line:     line,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *SemtexError {
	return &SemtexError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *SemtexError {
	return &SemtexError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *SemtexError {
	return &SemtexError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *SemtexError {
	return &SemtexError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// InCommand appends command to err's command chain when err is a
// SemtexError and returns it; other errors are wrapped with the same text.
func InCommand(err error, command string) error {
	if err == nil {
		return nil
	}

	var se *SemtexError
	if errors.As(err, &se) {
		se.WithinCommand(command)
		return err
	}

	return fmt.Errorf("%w in %s", err, command)
}

// IsParseError checks if an error is a structural parse error.
func IsParseError(err error) bool {
	var se *SemtexError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeParse
	}

	return false
}

// IsIOError checks if an error is a file error.
func IsIOError(err error) bool {
	var se *SemtexError
	if errors.As(err, &se) {
		return se.Type == ErrorTypeIO
	}

	return false
}

// Code returns the error code of err, or "" when err carries none.
func Code(err error) string {
	var se *SemtexError
	if errors.As(err, &se) {
		return se.Code
	}

	return ""
}
