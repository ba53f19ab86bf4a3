package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"budget-tracker/internal/errors"
	"budget-tracker/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownTraceID = "unknown"

var apiErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_errors_total",
		Help: "Total number of API errors by code, route and status",
	},
	[]string{"code", "endpoint", "status"},
)

// echo's own HTTP errors (404 routing, 405, body limit) mapped onto API codes.
var codeByHTTPStatus = map[int]errors.ErrorCode{
	http.StatusBadRequest:            errors.ValidationGeneral,
	http.StatusUnauthorized:          errors.AuthMissingToken,
	http.StatusForbidden:             errors.AuthInsufficientPermission,
	http.StatusNotFound:              errors.SystemRouteNotFound,
	http.StatusMethodNotAllowed:      errors.ValidationGeneral,
	http.StatusRequestEntityTooLarge: errors.ValidationGeneral,
	http.StatusUnprocessableEntity:   errors.ValidationGeneral,
	http.StatusTooManyRequests:       errors.SystemRateLimitExceeded,
	http.StatusInternalServerError:   errors.SystemInternalError,
	http.StatusServiceUnavailable:    errors.SystemServiceUnavailable,
}

// CustomHTTPErrorHandler renders every error returned through echo as the standard
// envelope. Client errors log at warn, server errors at error with the internal cause.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	traceID := GetTraceID(c)
	if traceID == "" {
		traceID = unknownTraceID
	}

	appErr := toAppError(err)
	req := c.Request()

	level := slog.LevelWarn
	if appErr.IsServerError() {
		level = slog.LevelError
	}
	slog.Log(req.Context(), level, "Request failed",
		"trace_id", traceID,
		"error_code", appErr.Code,
		"status", appErr.Status,
		"path", req.URL.Path,
		"method", req.Method,
		"error", err.Error())

	apiErrorsTotal.WithLabelValues(string(appErr.Code), c.Path(), strconv.Itoa(appErr.Status)).Inc()

	if sendErr := c.JSON(appErr.Status, appErr.Response(traceID)); sendErr != nil {
		slog.Error("Failed to write error response", "trace_id", traceID, "error", sendErr)
	}
}

// toAppError normalises whatever a handler or echo returned. Internal causes never
// reach the response body.
func toAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	if echoErr, ok := err.(*echo.HTTPError); ok {
		code, known := codeByHTTPStatus[echoErr.Code]
		if !known {
			code = errors.SystemUnexpectedError
		}
		opts := []errors.AppErrorOption{errors.Status(echoErr.Code)}
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			opts = append(opts, errors.Message(msg))
		}
		return errors.Wrap(code, err, opts...)
	}

	// Handlers that forget to map validator output still produce a field list
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		return errors.Wrap(errors.ValidationGeneral, err, errors.Details(validation.FormatErrors(validationErrs)...))
	}

	return errors.Wrap(errors.SystemInternalError, err)
}
