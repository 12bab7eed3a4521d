package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrConfig         = "CONFIG"
	ErrNetwork        = "NETWORK"
	ErrParse          = "PARSE"
	ErrMissingElement = "MISSING_ELEMENT"
	ErrAlert          = "ALERT"
	ErrServe          = "SERVE"
)

// Error is a structured error with code, message, suggestion and optional cause.
// It renders as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrNetwork code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrNetwork,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Network builds an ErrNetwork error for a failed upstream request.
func Network(err error, format string, args ...any) *Error {
	return &Error{
		Code:       ErrNetwork,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: "Check your network connection and the channel settings in .envdash.yaml",
		Cause:      err,
	}
}

// Parse builds an ErrParse error for an upstream body that could not be decoded.
func Parse(err error, format string, args ...any) *Error {
	return &Error{
		Code:       ErrParse,
		Message:    fmt.Sprintf(format, args...),
		Suggestion: "Verify the channel id and read key point at a ThingSpeak feed",
		Cause:      err,
	}
}

// Error renders the failure symbol, cause and suggestion on separate lines.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Short returns the message and cause on one line, for banners and log lines.
func (e *Error) Short() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var dashErr *Error
	if errors.As(err, &dashErr) {
		return dashErr.Code == code
	}
	return false
}

// Summary returns a single-line description of any error.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	var dashErr *Error
	if errors.As(err, &dashErr) {
		return dashErr.Short()
	}
	return strings.TrimSpace(err.Error())
}
