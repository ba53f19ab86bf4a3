package handlers

import (
	stderrors "errors"
	"strings"

	"budget-tracker/internal/errors"
	"budget-tracker/internal/repositories"
	"budget-tracker/internal/services"
	"budget-tracker/internal/validation"

	"github.com/labstack/echo/v4"
)

// Handlers return an *errors.AppError and let the echo error handler render, log and
// count it. Middleware that stops a request before any handler runs writes the envelope
// itself with SendError.

// TraceIDContextKey is where the request ID middleware stores the trace ID.
const TraceIDContextKey = "trace_id"

// ErrorResponse is the envelope written for every failure.
type ErrorResponse = errors.ErrorResponse

// SendError writes the envelope for code with the request's trace ID.
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.AppErrorOption) error {
	traceID, _ := c.Get(TraceIDContextKey).(string)
	appErr := errors.New(code, opts...)
	return c.JSON(appErr.Status, appErr.Response(traceID))
}

// toAppError maps a service or repository error onto the API error codes. Anything
// unrecognised becomes SYSTEM_001 with the cause kept for the logs.
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	switch {
	case stderrors.Is(err, services.ErrValidation):
		return errors.Wrap(errors.ValidationGeneral, err, errors.Details(reasonOf(err, services.ErrValidation)))
	case stderrors.Is(err, services.ErrNoCategories):
		return errors.Wrap(errors.ValidationGeneral, err, errors.Details(err.Error()))
	case stderrors.Is(err, services.ErrWeakPassword):
		return errors.Wrap(errors.ValidationWeakPassword, err, errors.Details(reasonOf(err, services.ErrWeakPassword)))
	case stderrors.Is(err, services.ErrInvalidCredentials):
		return errors.Wrap(errors.AuthInvalidCredentials, err)
	case stderrors.Is(err, services.ErrAccountLocked):
		return errors.Wrap(errors.AuthAccountLocked, err)
	case stderrors.Is(err, services.ErrInvalidRefreshToken):
		return errors.Wrap(errors.AuthInvalidRefreshToken, err)
	case stderrors.Is(err, services.ErrUserAlreadyExists), stderrors.Is(err, repositories.ErrUserAlreadyExists):
		return errors.Wrap(errors.UserAlreadyExists, err)
	case stderrors.Is(err, repositories.ErrUserNotFound):
		return errors.Wrap(errors.UserNotFound, err)
	case stderrors.Is(err, repositories.ErrCategoryNotFound):
		return errors.Wrap(errors.CategoryNotFound, err)
	case stderrors.Is(err, repositories.ErrExpenseNotFound):
		return errors.Wrap(errors.ExpenseNotFound, err)
	case stderrors.Is(err, repositories.ErrBudgetNotFound):
		return errors.Wrap(errors.BudgetNotFound, err)
	default:
		return errors.Wrap(errors.SystemInternalError, err)
	}
}

// reasonOf drops the "<sentinel>: " prefix so clients see the reason only.
func reasonOf(err, sentinel error) string {
	msg := err.Error()
	if reason, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && reason != "" {
		return reason
	}
	return msg
}

// validationError turns validator output into a VALIDATION_001 error with one detail per field.
func validationError(err error) *errors.AppError {
	return errors.Wrap(errors.ValidationGeneral, err, errors.Details(validation.FormatErrors(err)...))
}

func invalidBody(err error) *errors.AppError {
	return errors.Wrap(errors.ValidationGeneral, err, errors.Details("Invalid request body"))
}
