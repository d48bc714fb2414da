package apperror

import (
	"errors"
	"net/http"
)

// Kind is the stable category of an application error.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindInvalid      Kind = "invalid"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal"
)

// statusByKind maps each kind to the HTTP status code it is reported with.
var statusByKind = map[Kind]int{
	KindNotFound:     http.StatusNotFound,
	KindInvalid:      http.StatusBadRequest,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindInternal:     http.StatusInternalServerError,
}

// AppError is a custom error type that carries a stable kind, an HTTP status code and a user-facing message.
type AppError struct {
	Kind    Kind   // Stable error category
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same kind and message.
// This lets wrapped copies created by Wrap still match the sentinel they came from.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates a new AppError of the given kind with a message.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusOf(kind),
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusOf(kind),
		Message: message,
		Err:     err,
	}
}

// NotFound, Invalid, Forbidden and Conflict are shorthands for New.
func NotFound(message string) *AppError  { return New(KindNotFound, message) }
func Invalid(message string) *AppError   { return New(KindInvalid, message) }
func Forbidden(message string) *AppError { return New(KindForbidden, message) }
func Conflict(message string) *AppError  { return New(KindConflict, message) }

// StatusOf returns the HTTP status code for a kind. Unknown kinds map to 500.
func StatusOf(kind Kind) int {
	if code, ok := statusByKind[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
