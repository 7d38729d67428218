package apperrors

import "fmt"

// Code classifies an application error independently of transport.
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeTokenExpired    Code = "TOKEN_EXPIRED"
	CodeForbidden       Code = "PERMISSION_DENIED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeUnavailable     Code = "UNAVAILABLE"
	CodeInternal        Code = "INTERNAL"
)

// AppError carries a code, a user-facing message and an optional cause. The
// cause is logged but never serialized to clients.
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func InvalidArg(msg string) *AppError    { return New(CodeInvalidArgument, msg) }
func Unauthorized(msg string) *AppError  { return New(CodeUnauthenticated, msg) }
func TokenExpired(msg string) *AppError  { return New(CodeTokenExpired, msg) }
func Forbidden(msg string) *AppError     { return New(CodeForbidden, msg) }
func NotFound(msg string) *AppError      { return New(CodeNotFound, msg) }
func AlreadyExists(msg string) *AppError { return New(CodeAlreadyExists, msg) }
func Internal(msg string) *AppError      { return New(CodeInternal, msg) }
