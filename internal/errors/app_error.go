package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the error value handlers return to the echo error handler. Code is the
// kind, Status the HTTP status it maps to, and Cause the internal error kept for logs only.
type AppError struct {
	Code    ErrorCode
	Message string
	Status  int
	Details []string
	Cause   error
}

// New builds an AppError with the default message and status for code.
func New(code ErrorCode, opts ...AppErrorOption) *AppError {
	e := &AppError{
		Code:    code,
		Message: GetErrorMessage(code),
		Status:  GetHTTPStatus(code),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wrap builds an AppError that remembers the internal cause.
func Wrap(code ErrorCode, cause error, opts ...AppErrorOption) *AppError {
	e := New(code, opts...)
	e.Cause = cause
	return e
}

type AppErrorOption func(*AppError)

func Message(message string) AppErrorOption {
	return func(e *AppError) {
		e.Message = message
	}
}

func Details(details ...string) AppErrorOption {
	return func(e *AppError) {
		e.Details = details
	}
}

// Status overrides the HTTP status derived from the code.
func Status(status int) AppErrorOption {
	return func(e *AppError) {
		e.Status = status
	}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsServerError reports whether the error should be logged as a failure of the service.
func (e *AppError) IsServerError() bool {
	return e.Status >= 500
}

// Response renders the error in the standard envelope.
func (e *AppError) Response(traceID string) *ErrorResponse {
	details := e.Details
	if details == nil {
		details = []string{}
	}
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    string(e.Code),
			Message: e.Message,
			Details: details,
			TraceID: traceID,
		},
	}
}

// AsAppError extracts an AppError from err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
