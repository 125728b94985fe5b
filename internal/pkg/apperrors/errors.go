// Package apperrors provides the structured error taxonomy used across the
// service runtime and HTTP parser (spec.md §7).
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is one of the error categories spec.md §7 names.
type Kind string

const (
	BadArgument        Kind = "bad-argument"
	NameConflict       Kind = "name-conflict"
	ProgrammerError    Kind = "programmer-error"
	ParseError         Kind = "parse-error"
	ResourceExhausted  Kind = "resource-exhausted"
	ShutdownInProgress Kind = "shutdown-in-progress"
	IOFailure          Kind = "io-failure"
)

var httpStatusByKind = map[Kind]int{
	BadArgument:        http.StatusBadRequest,
	NameConflict:       http.StatusConflict,
	ProgrammerError:    http.StatusInternalServerError,
	ParseError:         0, // internal only, never surfaced over HTTP directly
	ResourceExhausted:  http.StatusServiceUnavailable,
	ShutdownInProgress: http.StatusServiceUnavailable,
	IOFailure:          0, // surfaced only to the subscribing handler
}

// AppError is a structured application error carrying a taxonomy Kind, a
// machine-readable Code, and an optional wrapped cause.
type AppError struct {
	Kind       Kind
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError of the given kind with a machine-readable code.
func New(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message, HTTPStatus: httpStatusByKind[kind]}
}

// Wrap creates an AppError of the given kind wrapping an existing error.
func Wrap(kind Kind, code, message string, err error) *AppError {
	ae := New(kind, code, message)
	ae.Err = err
	return ae
}

// Is reports whether err is (or wraps) an AppError of the given kind.
func Is(err error, kind Kind) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind == kind
	}
	return false
}

// As extracts an *AppError from err, following the error chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Convenience constructors for the error-handling scenarios spec.md §7
// names explicitly.

func NewBadArgument(what string) *AppError {
	return New(BadArgument, "BAD_ARGUMENT", what+" must not be empty or nil")
}

func NewNameConflict(name string) *AppError {
	return New(NameConflict, "NAME_CONFLICT", fmt.Sprintf("service %q is already registered", name))
}

func NewProgrammerError(what string) *AppError {
	return New(ProgrammerError, "PROGRAMMER_ERROR", what)
}

func NewParseError(what string) *AppError {
	return New(ParseError, "PARSE_ERROR", what)
}

func NewResourceExhausted(what string) *AppError {
	return New(ResourceExhausted, "RESOURCE_EXHAUSTED", what)
}

func NewShutdownInProgress(name string) *AppError {
	return New(ShutdownInProgress, "SHUTDOWN_IN_PROGRESS", fmt.Sprintf("service %q is shutting down", name))
}

func NewIOFailure(err error) *AppError {
	return Wrap(IOFailure, "IO_FAILURE", "underlying I/O operation failed", err)
}
