package errors

import (
	"fmt"
	"sync"
	"time"
)

// Diagnostic is a located message produced while processing a file.
type Diagnostic struct {
	File      string
	Line      int
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of a diagnostic
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
}

// NewWarning creates a non-fatal diagnostic.
func NewWarning(file string, line int, message string) Diagnostic {
	return Diagnostic{
		File:     file,
		Line:     line,
		Message:  message,
		Severity: ErrorSeverityWarning,
	}
}

// ErrorCollector collects diagnostics and errors from concurrent workers
type ErrorCollector struct {
	diagnostics []Diagnostic
	errors      []error
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		diagnostics: make([]Diagnostic, 0),
		errors:      make([]error, 0),
	}
}

// Add adds a diagnostic to the collector
func (ec *ErrorCollector) Add(d Diagnostic) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	d.Timestamp = time.Now()
	ec.diagnostics = append(ec.diagnostics, d)
}

// AddError adds a fatal error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// Diagnostics returns all collected diagnostics
func (ec *ErrorCollector) Diagnostics() []Diagnostic {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]Diagnostic, len(ec.diagnostics))
	copy(result, ec.diagnostics)
	return result
}

// Errors returns all collected fatal errors in the order they were recorded
func (ec *ErrorCollector) Errors() []error {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]error, len(ec.errors))
	copy(result, ec.errors)
	return result
}

// HasErrors returns true if any fatal error was recorded
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	return len(ec.errors) > 0
}

// Err folds the recorded errors into one, or returns nil.
func (ec *ErrorCollector) Err() error {
	errs := ec.Errors()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return fmt.Errorf("processing failed with %d errors, first: %w", len(errs), errs[0])
	}
}

// DiagnosticsByFile returns diagnostics for a specific file
func (ec *ErrorCollector) DiagnosticsByFile(file string) []Diagnostic {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	var fileDiags []Diagnostic
	for _, d := range ec.diagnostics {
		if d.File == file {
			fileDiags = append(fileDiags, d)
		}
	}
	return fileDiags
}
