package surtype

import (
	"errors"
	"fmt"

	"github.com/syssam/surtype/diag"
)

// Standard sentinel errors for common operations.
var (
	// ErrConfigNotFound is returned when no project configuration file
	// exists in the start directory or any of its parents.
	ErrConfigNotFound = errors.New("surtype: configuration file not found")

	// ErrAnalysisFailed is returned when a run collected at least one
	// Error-severity diagnostic.
	ErrAnalysisFailed = errors.New("surtype: analysis failed")
)

// AnalysisError reports that a run collected Error-severity
// diagnostics. The CLI maps it to a non-zero exit code.
type AnalysisError struct {
	Diagnostics diag.List
}

// Error returns the error string.
func (e *AnalysisError) Error() string {
	n := len(e.Diagnostics.Errors())
	if n == 1 {
		return "surtype: analysis failed with 1 error"
	}
	return fmt.Sprintf("surtype: analysis failed with %d errors", n)
}

// Is reports whether the target error matches AnalysisError.
// This allows errors.Is(err, ErrAnalysisFailed) to return true.
func (e *AnalysisError) Is(err error) bool {
	return err == ErrAnalysisFailed
}

// NewAnalysisError returns an AnalysisError if the list contains any
// Error-severity diagnostic, otherwise nil.
func NewAnalysisError(diags diag.List) error {
	if !diags.HasErrors() {
		return nil
	}
	return &AnalysisError{Diagnostics: diags}
}

// IsAnalysisError returns true if the error is an AnalysisError.
func IsAnalysisError(err error) bool {
	if err == nil {
		return false
	}
	var e *AnalysisError
	return errors.As(err, &e) || errors.Is(err, ErrAnalysisFailed)
}

// ConfigError wraps a configuration loading or validation failure with
// the offending file.
type ConfigError struct {
	Path string
	Err  error
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("surtype: config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError returns a new ConfigError for the given file.
func NewConfigError(path string, err error) *ConfigError {
	return &ConfigError{Path: path, Err: err}
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	if err == nil {
		return false
	}
	var e *ConfigError
	return errors.As(err, &e)
}
