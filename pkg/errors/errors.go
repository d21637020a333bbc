package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies the kind of an application error.
type ErrorCode string

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports a match on code so callers can compare against the sentinels below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

// StatusCode maps the error code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case ErrInvalidInput, ErrInvalidSender:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrForbidden, ErrProfileNotFound:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict:
		return http.StatusConflict
	case ErrUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case ErrUpstreamFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrInvalidInput        ErrorCode = "invalid_input"
	ErrInvalidSender       ErrorCode = "invalid_sender"
	ErrUnauthenticated     ErrorCode = "unauthenticated"
	ErrForbidden           ErrorCode = "forbidden"
	ErrProfileNotFound     ErrorCode = "profile_not_found"
	ErrNotFound            ErrorCode = "not_found"
	ErrConflict            ErrorCode = "conflict"
	ErrUpstreamUnavailable ErrorCode = "upstream_unavailable"
	ErrUpstreamFailed      ErrorCode = "upstream_failed"
	ErrInternal            ErrorCode = "internal"
)

// Sentinels for errors.Is comparisons. Only the code is compared.
var (
	InvalidInputError        = &AppError{Code: ErrInvalidInput}
	InvalidSenderError       = &AppError{Code: ErrInvalidSender}
	UnauthenticatedError     = &AppError{Code: ErrUnauthenticated}
	ForbiddenError           = &AppError{Code: ErrForbidden}
	ProfileNotFoundError     = &AppError{Code: ErrProfileNotFound}
	NotFoundError            = &AppError{Code: ErrNotFound}
	ConflictError            = &AppError{Code: ErrConflict}
	UpstreamUnavailableError = &AppError{Code: ErrUpstreamUnavailable}
	UpstreamFailedError      = &AppError{Code: ErrUpstreamFailed}
	InternalError            = &AppError{Code: ErrInternal}
)

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func InvalidInput(message string, err error) *AppError {
	return &AppError{
		Code:    ErrInvalidInput,
		Message: message,
		Err:     err,
	}
}

func InvalidSender(message string) *AppError {
	return &AppError{
		Code:    ErrInvalidSender,
		Message: message,
	}
}

func Unauthenticated(message string, err error) *AppError {
	if message == "" {
		message = "could not validate credentials"
	}
	return &AppError{
		Code:    ErrUnauthenticated,
		Message: message,
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

func ProfileNotFound() *AppError {
	return &AppError{
		Code:    ErrProfileNotFound,
		Message: "user profile not found",
	}
}

func Conflict(message string, err error) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
		Err:     err,
	}
}

func UpstreamUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstreamUnavailable,
		Message: message,
		Err:     err,
	}
}

func UpstreamFailed(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstreamFailed,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// As unwraps err into an AppError, wrapping unknown errors as internal.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
