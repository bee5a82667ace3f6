// Package errors provides structured error handling for the modkit CLI.
// Errors carry a category and actionable remediation steps that are
// rendered with color when the terminal supports it.
package errors

import (
	"errors"
	"fmt"
)

// Category classifies what went wrong so the CLI can pick an exit code
// and a useful message shape.
type Category int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument Category = iota
	// Configuration errors are caused by invalid or unreadable configuration.
	Configuration
	// Prerequisite errors occur when a required directory or file is missing.
	Prerequisite
	// Runtime errors occur while executing a module's install or run step.
	Runtime
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Prerequisite:
		return "Prerequisite Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// CLIError is a categorized error with remediation guidance.
type CLIError struct {
	Category    Category
	Message     string
	Remediation []string
	// Err is the underlying error, if any. Exposed via Unwrap so callers
	// can still match sentinel errors with errors.Is.
	Err error
}

func (e *CLIError) Error() string { return e.Message }

func (e *CLIError) Unwrap() error { return e.Err }

// New creates a CLIError with the given category, message, and remediation steps.
func New(category Category, message string, remediation ...string) *CLIError {
	return &CLIError{Category: category, Message: message, Remediation: remediation}
}

// Newf creates a CLIError with a formatted message and no remediation.
func Newf(category Category, format string, args ...any) *CLIError {
	return &CLIError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a category and remediation to an existing error.
// Returns nil when err is nil.
func Wrap(err error, category Category, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{Category: category, Message: err.Error(), Remediation: remediation, Err: err}
}

// WrapWithMessage wraps err under a new message while keeping it reachable
// through Unwrap.
func WrapWithMessage(err error, category Category, message string, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{
		Category:    category,
		Message:     fmt.Sprintf("%s: %v", message, err),
		Remediation: remediation,
		Err:         err,
	}
}

// AsCLIError extracts a CLIError from err's chain, or nil if there is none.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
