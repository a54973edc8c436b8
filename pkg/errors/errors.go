package errors

import (
	"fmt"
	"strings"
)

// ParseError represents a YAML parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures configuration validation issues.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ProcessExitError indicates the spawned tool exited with a nonzero code.
type ProcessExitError struct {
	Run      string
	ExitCode int
	Err      error
}

// NewProcessExitError constructs a ProcessExitError for the given run.
func NewProcessExitError(run string, exitCode int, err error) error {
	return &ProcessExitError{Run: run, ExitCode: exitCode, Err: err}
}

func (e *ProcessExitError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("run %s: process exited with code %d", e.Run, e.ExitCode)
}

// Unwrap exposes the underlying error.
func (e *ProcessExitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MarkedStepError indicates a step reported an explicit failure marker.
type MarkedStepError struct {
	Run  string
	Step string
}

// NewMarkedStepError constructs a MarkedStepError.
func NewMarkedStepError(run, step string) error {
	return &MarkedStepError{Run: run, Step: step}
}

func (e *MarkedStepError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("run %s: step %s reported failure", e.Run, e.Step)
}

// TimingError indicates the run's timing analysis reported violations.
type TimingError struct {
	Run        string
	ReportPath string
}

// NewTimingError constructs a TimingError.
func NewTimingError(run, reportPath string) error {
	return &TimingError{Run: run, ReportPath: reportPath}
}

func (e *TimingError) Error() string {
	if e == nil {
		return ""
	}
	if e.ReportPath != "" {
		return fmt.Sprintf("run %s: timing violations (report: %s)", e.Run, e.ReportPath)
	}
	return fmt.Sprintf("run %s: timing violations", e.Run)
}

// BatchError aggregates every failed run of a batch. It is returned only
// after the whole batch has finished.
type BatchError struct {
	Operation string
	Failed    []string
}

// NewBatchError constructs a BatchError naming every failed run.
func NewBatchError(operation string, failed []string) error {
	return &BatchError{Operation: operation, Failed: failed}
}

func (e *BatchError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s failed for %d run(s): %s", e.Operation, len(e.Failed), strings.Join(e.Failed, ", "))
}
