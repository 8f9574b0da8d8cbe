// Package errors defines the coded error type used across the pipeline so
// callers can tell which stage produced a failure.
package errors

import (
	"errors"
	"fmt"
)

// Standard error codes for the application.
const (
	CodeUnknown  = "UNKNOWN"
	CodeConfig   = "CONFIG"
	CodeDatabase = "DATABASE"
	CodeSchema   = "SCHEMA"
	CodeLoad     = "LOAD"
	CodeExport   = "EXPORT"
	CodeReport   = "REPORT"
)

// ApplicationError is the interface that all our custom errors implement.
type ApplicationError interface {
	error
	Code() string
	Unwrap() error
}

// Error is a coded application error wrapping an optional cause.
type Error struct {
	code    string
	message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.message, e.err)
	}

	return e.message
}

func (e *Error) Code() string {
	return e.code
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the code of the first ApplicationError in err's chain,
// or CodeUnknown if it doesn't have one.
func Code(err error) string {
	var appErr ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Code()
	}

	return CodeUnknown
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

func newError(code, message string, cause error) error {
	return &Error{code: code, message: message, err: cause}
}

func NewConfigError(message string, cause error) error {
	return newError(CodeConfig, message, cause)
}

func NewDatabaseError(message string, cause error) error {
	return newError(CodeDatabase, message, cause)
}

func NewSchemaError(message string, cause error) error {
	return newError(CodeSchema, message, cause)
}

func NewLoadError(message string, cause error) error {
	return newError(CodeLoad, message, cause)
}

func NewExportError(message string, cause error) error {
	return newError(CodeExport, message, cause)
}

func NewReportError(message string, cause error) error {
	return newError(CodeReport, message, cause)
}
